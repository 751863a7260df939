package game

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/songquiz/go/internal/channel"
	"github.com/mcdev12/songquiz/go/internal/session"
)

// Machine is the client-side game state synchronization machine. It owns the
// only mutable copy of State, applies inbound protocol events through pure
// reducers, runs the round countdown as the single timer side effect, and
// emits outbound intents under guard conditions.
//
// Event handlers and timer ticks are serialized: a handler runs to completion
// before the next one is applied.
type Machine struct {
	ch       channel.Channel
	sessions session.Store
	clock    clockwork.Clock
	timer    *RoundTimer

	// OnChange, when set before Start, is invoked with a snapshot after
	// every applied transition and timer tick.
	OnChange func(State)

	mu       sync.Mutex
	state    State
	roster   *Roster
	timerGen int
}

// NewMachine creates a machine bound to a channel and session store. The
// clock drives the round countdown and session expiry.
func NewMachine(ch channel.Channel, sessions session.Store, clock clockwork.Clock) *Machine {
	return &Machine{
		ch:       ch,
		sessions: sessions,
		clock:    clock,
		timer:    NewRoundTimer(clock),
		state:    initialState(),
		roster:   NewRoster(),
	}
}

// Start attaches the inbound subscriptions. Call before the channel connects
// so the synthetic connect event (and with it session resumption) is seen.
func (m *Machine) Start() {
	for _, evt := range inboundEvents {
		m.ch.Subscribe(string(evt), func(data json.RawMessage) {
			m.handleEvent(evt, data)
		})
	}
	log.Info().Int("events", len(inboundEvents)).Msg("game state machine started")
}

// Stop detaches the inbound subscriptions and cancels any active countdown.
func (m *Machine) Stop() {
	for _, evt := range inboundEvents {
		m.ch.Unsubscribe(string(evt))
	}
	m.timer.Cancel()
	m.mu.Lock()
	m.timerGen++
	m.mu.Unlock()
	log.Info().Msg("game state machine stopped")
}

// Snapshot returns a value copy of the current state for read-only consumers.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() State {
	st := m.state
	st.Players = m.roster.Players()
	if m.state.Leader != nil {
		leader := *m.state.Leader
		st.Leader = &leader
	}
	return st
}

// handleEvent parses an inbound event, applies its reducer, and performs the
// resulting timer effect.
func (m *Machine) handleEvent(evt EventType, data json.RawMessage) {
	switch evt {
	case EventConnect:
		m.handleConnect()
		return
	case EventDisconnect:
		log.Info().Msg("disconnected from server")
		return
	}

	payload, err := ParsePayload(evt, data)
	if err != nil {
		log.Error().Err(err).Str("event", string(evt)).Msg("failed to parse inbound event")
		return
	}

	m.mu.Lock()
	eff, selfKick, ok := m.applyLocked(evt, payload)
	if !ok {
		m.mu.Unlock()
		return
	}

	var gen int
	switch eff {
	case effectStartTimer:
		m.timerGen++
		gen = m.timerGen
	case effectStopTimer:
		// Invalidate any tick already in flight.
		m.timerGen++
	}
	m.mu.Unlock()

	switch eff {
	case effectStartTimer:
		m.timer.Start(func() bool { return m.tick(gen) })
	case effectStopTimer:
		m.timer.Cancel()
	}

	if selfKick {
		if err := m.sessions.Remove(); err != nil {
			log.Error().Err(err).Msg("failed to clear persisted session")
		}
		log.Info().Msg("kicked from room, local state reset")
	}

	m.notify()
}

// applyLocked routes the event to its reducer. Caller holds m.mu. The third
// return is false when the event carried nothing to apply.
func (m *Machine) applyLocked(evt EventType, payload any) (eff effect, selfKick bool, ok bool) {
	ok = true
	switch evt {
	case EventRoomNotFound, EventPlayerAlreadyExists:
		log.Warn().Str("event", string(evt)).Msg("join rejected by server, resetting state")
		eff = applyFullReset(&m.state, m.roster)

	case EventJoinSuccess:
		p := payload.(JoinSuccessPayload)
		log.Info().Str("nickname", p.Nickname).Msg("joined room")
		eff = applyJoinSuccess(&m.state, m.roster, p)

	case EventPlayerJoined:
		p := payload.(*Player)
		if p == nil {
			return 0, false, false
		}
		eff = applyPlayerJoined(&m.state, m.roster, *p)

	case EventPlayerDisconnected, EventUpdatePlayer:
		p := payload.(*Player)
		if p == nil {
			return 0, false, false
		}
		eff = applyPlayerUpdate(&m.state, m.roster, *p)

	case EventUpdatePlayers:
		m.roster.Replace(payload.([]Player))

	case EventPlayerGuess:
		p := payload.(*Player)
		if p == nil {
			return 0, false, false
		}
		eff = applyPlayerGuess(&m.state, m.roster, *p)

	case EventKick:
		eff, selfKick = applyKick(&m.state, m.roster, payload.(string))

	case EventLeader:
		p := payload.(*Player)
		if p == nil {
			return 0, false, false
		}
		eff = applyLeader(&m.state, m.roster, *p)

	case EventStopRound:
		eff = applyStopRound(&m.state, m.roster, payload.(StopRoundPayload))

	case EventStartChoose:
		eff = applyStartChoose(&m.state, m.roster, payload.(StartChoosePayload))

	case EventStartRound:
		eff = applyStartRound(&m.state, m.roster, payload.(StartRoundPayload))

	case EventHostPlaySong:
		eff = applyHostPlaySong(&m.state, m.roster, payload.(Song))

	case EventHostJoin:
		eff = applyHostJoin(&m.state, m.roster, payload.(RoomPayload))

	case EventReset:
		eff = applyReset(&m.state, m.roster)

	default:
		log.Warn().Str("event", string(evt)).Msg("unknown event type - ignoring")
		return 0, false, false
	}
	return eff, selfKick, ok
}

// handleConnect attempts a silent session resume: if a complete persisted
// session exists, re-emit join with its identity.
func (m *Machine) handleConnect() {
	sess, err := m.sessions.Get()
	if err != nil {
		log.Error().Err(err).Msg("failed to read persisted session")
		return
	}
	if !sess.Valid() {
		log.Debug().Msg("no resumable session")
		return
	}

	log.Info().
		Str("room", sess.Name).
		Str("nickname", sess.Nickname).
		Msg("resuming session")
	if err := m.ch.Emit(string(IntentJoin), joinPayload{
		Nickname:  sess.Nickname,
		Name:      sess.Name,
		SessionID: sess.SessionID,
	}); err != nil {
		log.Error().Err(err).Msg("failed to emit resume join")
	}
}

// tick advances the countdown by one second. Returns false at the terminal
// state or when a newer countdown has replaced this one.
func (m *Machine) tick(gen int) bool {
	m.mu.Lock()
	if gen != m.timerGen {
		m.mu.Unlock()
		return false
	}
	if m.state.GuessTimer < 1 {
		m.state.GuessTimer = 0
		m.mu.Unlock()
		m.notify()
		return false
	}
	m.state.GuessTimer--
	m.mu.Unlock()
	m.notify()
	return true
}

func (m *Machine) notify() {
	if m.OnChange == nil {
		return
	}
	m.OnChange(m.Snapshot())
}

// JoinAsPlayer persists a fresh session when none matches the room, then
// emits the join intent. An empty nickname emits nothing; the session is
// still written first, matching the historical client.
func (m *Machine) JoinAsPlayer(nickname, room string) error {
	sess, err := m.sessions.Get()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read persisted session")
	}
	if !sess.Valid() || sess.Name != room {
		sess = &session.Session{
			SessionID: uuid.NewString(),
			Nickname:  nickname,
			Name:      room,
			ExpiresAt: m.clock.Now().Add(session.TTL),
		}
		if err := m.sessions.Put(sess); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}

	if nickname == "" {
		return nil
	}

	return m.ch.Emit(string(IntentJoin), joinPayload{
		Nickname:  nickname,
		Name:      room,
		SessionID: sess.SessionID,
	})
}

// JoinAsHost flags this client as the room host and emits the host join
// intent. The local flag is set before the emission, in that order.
func (m *Machine) JoinAsHost() error {
	m.mu.Lock()
	m.state.IsHost = true
	m.mu.Unlock()
	m.notify()

	return m.ch.Emit(string(IntentHostJoin), nil)
}

// KickPlayer asks the server to remove target from the current room.
func (m *Machine) KickPlayer(target string) error {
	m.mu.Lock()
	room := m.state.Name
	m.mu.Unlock()

	return m.ch.Emit(string(IntentKick), kickPayload{Name: room, Player: target})
}

// Guess submits a guess for the current round. Once the local player has
// guessed, further calls are suppressed until the next round starts.
func (m *Machine) Guess(song Song) error {
	m.mu.Lock()
	if m.state.Guessed {
		m.mu.Unlock()
		log.Debug().Msg("guess suppressed, already guessed this round")
		return nil
	}
	p := guessPayload{Song: song, Name: m.state.Name, Nickname: m.state.Nickname}
	m.mu.Unlock()

	return m.ch.Emit(string(IntentGuess), p)
}

// SendSettings pushes a settings update for the current room.
func (m *Machine) SendSettings(settings json.RawMessage) error {
	m.mu.Lock()
	room := m.state.Name
	m.mu.Unlock()

	return m.ch.Emit(string(IntentSettings), settingsPayload{Name: room, Settings: settings})
}

// SelectSong submits the leader's song choice for the next round.
func (m *Machine) SelectSong(song Song) error {
	m.mu.Lock()
	room := m.state.Name
	m.mu.Unlock()

	return m.ch.Emit(string(IntentSelectedSong), selectedSongPayload{Song: song, Name: room})
}

// ToggleSettings flips the settings panel visibility. Purely local.
func (m *Machine) ToggleSettings() {
	m.mu.Lock()
	m.state.ShowSettings = !m.state.ShowSettings
	m.mu.Unlock()
	m.notify()
}
