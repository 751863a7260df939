package game

// effect tells the orchestrating layer which timer side effect a transition
// requires. Reducers never touch the timer themselves.
type effect int

const (
	effectNone effect = iota
	effectStartTimer
	effectStopTimer
)

// applyReset returns state to the initial lobby view. ShowSettings is
// UI-local and survives the reset.
func applyReset(st *State, r *Roster) effect {
	showSettings := st.ShowSettings
	*st = initialState()
	st.ShowSettings = showSettings
	r.Replace(nil)
	return effectStopTimer
}

// applyFullReset discards everything, ShowSettings included. Used for the
// server failure signals that abort a join attempt.
func applyFullReset(st *State, r *Roster) effect {
	*st = initialState()
	r.Replace(nil)
	return effectStopTimer
}

// mergeRoom adopts present room fields into state, leaving absent fields
// untouched. IsLeader is re-derived afterwards by the callers.
func mergeRoom(st *State, r *Roster, room RoomPayload) {
	if room.Name != nil {
		st.Name = *room.Name
	}
	if room.Players != nil {
		r.Replace(room.Players)
	}
	if room.Leader != nil {
		leader := *room.Leader
		st.Leader = &leader
	}
	if room.Gamestate != nil {
		st.Gamestate = *room.Gamestate
	}
	if room.Started != nil {
		st.Started = *room.Started
	}
	if room.GuessTimer != nil {
		st.GuessTimer = *room.GuessTimer
	}
	if room.IsHost != nil {
		st.IsHost = *room.IsHost
	}
}

// applyJoinSuccess adopts the found room wholesale and records the local
// identity. Rejoining mid-round resumes the countdown from the room's
// remaining time.
func applyJoinSuccess(st *State, r *Roster, p JoinSuccessPayload) effect {
	st.Nickname = p.Nickname
	mergeRoom(st, r, p.FoundRoom)
	recomputeIsLeader(st)
	if st.Gamestate == GamestateMidgame {
		return effectStartTimer
	}
	return effectNone
}

// applyPlayerJoined upserts a known player and appends an unknown one, unless
// the join is the echo of the local player's own join.
func applyPlayerJoined(st *State, r *Roster, p Player) effect {
	if r.Has(p.Nickname) {
		r.Upsert(p)
	} else if p.Nickname != st.Nickname {
		r.Upsert(p)
	}
	return effectNone
}

// applyPlayerUpdate handles the roster-update events: updatePlayer, and
// playerDisconnected, which the server sends as an update carrying disconnect
// metadata rather than a removal.
func applyPlayerUpdate(st *State, r *Roster, p Player) effect {
	r.Upsert(p)
	return effectNone
}

// applyPlayerGuess records a guess result. Only the local player's own guess
// flips the local Guessed/Correct flags.
func applyPlayerGuess(st *State, r *Roster, p Player) effect {
	r.Upsert(p)
	if p.Nickname == st.Nickname {
		st.Guessed = true
		st.Correct = p.Correct
	}
	return effectNone
}

// applyKick distinguishes self-removal (full local reset; the caller also
// clears the persisted session) from removing another player.
func applyKick(st *State, r *Roster, nickname string) (effect, bool) {
	if nickname == st.Nickname {
		return applyReset(st, r), true
	}
	r.Remove(nickname)
	return effectNone, false
}

func applyLeader(st *State, r *Roster, leader Player) effect {
	st.Leader = &leader
	recomputeIsLeader(st)
	return effectNone
}

func applyStopRound(st *State, r *Roster, p StopRoundPayload) effect {
	st.GuessTimer = 0
	st.CorrectSong = p.CorrectSong
	st.Gamestate = p.Gamestate
	return effectStopTimer
}

func applyStartChoose(st *State, r *Roster, p StartChoosePayload) effect {
	st.Started = true
	st.Guessed = false
	st.Gamestate = p.Gamestate
	return effectNone
}

func applyStartRound(st *State, r *Roster, p StartRoundPayload) effect {
	st.Guessed = false
	st.GuessTimer = p.RoundTime / 1000
	st.Gamestate = p.Gamestate
	return effectStartTimer
}

func applyHostPlaySong(st *State, r *Roster, song Song) effect {
	st.SongToPlay = song
	return effectNone
}

// applyHostJoin merges a host-side full-state push.
func applyHostJoin(st *State, r *Roster, room RoomPayload) effect {
	mergeRoom(st, r, room)
	recomputeIsLeader(st)
	return effectNone
}
