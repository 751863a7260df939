package game

import "encoding/json"

// Song is an opaque song reference supplied by the server or the search UI.
// The client never interprets it, only carries it.
type Song = json.RawMessage

// Gamestate tags the server attaches to phase transitions. They are adopted
// verbatim, never derived locally.
const (
	GamestateLobby    = "lobby"
	GamestateChoosing = "choosing"
	GamestateMidgame  = "midgame"
)

// Player is one participant in a room. Identity is the nickname; lookup and
// equality are always by nickname.
type Player struct {
	Nickname  string `json:"nickname"`
	Correct   bool   `json:"correct"`
	Guessed   bool   `json:"guessed,omitempty"`
	Score     int    `json:"score,omitempty"`
	Connected bool   `json:"connected,omitempty"`
}

// State is the client's view of the room. The machine owns the only mutable
// copy; Snapshot hands out value copies for the presentation layer.
type State struct {
	Name         string   `json:"name"`
	Players      []Player `json:"players"`
	IsHost       bool     `json:"isHost"`
	Nickname     string   `json:"nickname"`
	Started      bool     `json:"started"`
	Gamestate    string   `json:"gamestate"`
	GuessTimer   int      `json:"guessTimer"`
	IsLeader     bool     `json:"isLeader"`
	Leader       *Player  `json:"leader,omitempty"`
	CorrectSong  Song     `json:"correctSong,omitempty"`
	SongToPlay   Song     `json:"songToPlay,omitempty"`
	Guessed      bool     `json:"guessed"`
	Correct      bool     `json:"correct"`
	ShowSettings bool     `json:"showSettings"`
}

// initialState is the empty lobby view the machine starts from and returns to
// on a full reset.
func initialState() State {
	return State{}
}

// recomputeIsLeader re-derives the leader flag. It must be called whenever
// Leader or Nickname changes; IsLeader is never mutated independently.
func recomputeIsLeader(st *State) {
	st.IsLeader = st.Leader != nil && st.Nickname != "" && st.Leader.Nickname == st.Nickname
}
