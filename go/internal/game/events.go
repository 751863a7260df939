package game

import (
	"encoding/json"
	"fmt"

	"github.com/mcdev12/songquiz/go/internal/channel"
)

// EventType names a protocol event. The string values are the wire contract
// shared with the game server and must not change.
type EventType string

// Inbound events (server → client, plus transport lifecycle).
const (
	EventConnect             EventType = channel.EventConnect
	EventDisconnect          EventType = channel.EventDisconnect
	EventRoomNotFound        EventType = "roomNotFound"
	EventPlayerAlreadyExists EventType = "playerAlreadyExists"
	EventJoinSuccess         EventType = "joinSuccess"
	EventPlayerJoined        EventType = "playerJoined"
	EventPlayerDisconnected  EventType = "playerDisconnected"
	EventUpdatePlayer        EventType = "updatePlayer"
	EventUpdatePlayers       EventType = "updatePlayers"
	EventPlayerGuess         EventType = "playerGuess"
	EventKick                EventType = "kick"
	EventLeader              EventType = "leader"
	EventStopRound           EventType = "stopRound"
	EventStartChoose         EventType = "startChoose"
	EventStartRound          EventType = "startRound"
	EventHostPlaySong        EventType = "hostPlaySong"
	EventHostJoin            EventType = "hostJoin"
	EventReset               EventType = "reset"
)

// Outbound intents (client → server).
const (
	IntentJoin         EventType = "join"
	IntentHostJoin     EventType = "hostJoin"
	IntentKick         EventType = "kick"
	IntentGuess        EventType = "guess"
	IntentSettings     EventType = "settings"
	IntentSelectedSong EventType = "selectedSong"
)

// inboundEvents is every event the machine subscribes to on Start.
var inboundEvents = []EventType{
	EventConnect,
	EventDisconnect,
	EventRoomNotFound,
	EventPlayerAlreadyExists,
	EventJoinSuccess,
	EventPlayerJoined,
	EventPlayerDisconnected,
	EventUpdatePlayer,
	EventUpdatePlayers,
	EventPlayerGuess,
	EventKick,
	EventLeader,
	EventStopRound,
	EventStartChoose,
	EventStartRound,
	EventHostPlaySong,
	EventHostJoin,
	EventReset,
}

// RoomPayload carries the room fields the server pushes on joinSuccess and
// hostJoin. Pointer fields distinguish "absent" from zero so absent fields
// retain their previous local value (shallow merge, inputs trusted).
type RoomPayload struct {
	Name       *string  `json:"name,omitempty"`
	Players    []Player `json:"players,omitempty"`
	Leader     *Player  `json:"leader,omitempty"`
	Gamestate  *string  `json:"gamestate,omitempty"`
	Started    *bool    `json:"started,omitempty"`
	GuessTimer *int     `json:"guessTimer,omitempty"`
	IsHost     *bool    `json:"isHost,omitempty"`
}

// JoinSuccessPayload confirms a join and hands over the full room view.
type JoinSuccessPayload struct {
	Nickname  string      `json:"nickname"`
	FoundRoom RoomPayload `json:"foundRoom"`
}

// StopRoundPayload ends the guessing phase and reveals the answer.
type StopRoundPayload struct {
	CorrectSong Song   `json:"correctSong,omitempty"`
	Gamestate   string `json:"gamestate"`
}

// StartChoosePayload moves the room into the leader-picks-a-song phase.
type StartChoosePayload struct {
	Gamestate string `json:"gamestate"`
}

// StartRoundPayload starts a guessing round. RoundTime is in milliseconds.
type StartRoundPayload struct {
	RoundTime int    `json:"roundTime"`
	Gamestate string `json:"gamestate"`
}

// Outbound payloads. Field names are the wire contract.

type joinPayload struct {
	Nickname  string `json:"nickname"`
	Name      string `json:"name"`
	SessionID string `json:"sessionId"`
}

type kickPayload struct {
	Name   string `json:"name"`
	Player string `json:"player"`
}

type guessPayload struct {
	Song     Song   `json:"song"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

type settingsPayload struct {
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

type selectedSongPayload struct {
	Song Song   `json:"song"`
	Name string `json:"name"`
}

// ParsePayload decodes the raw payload of an inbound event into its typed
// struct. Events without a payload return nil.
func ParsePayload(evt EventType, data json.RawMessage) (any, error) {
	switch evt {
	case EventJoinSuccess:
		var p JoinSuccessPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return p, nil

	case EventPlayerJoined, EventPlayerDisconnected, EventUpdatePlayer, EventPlayerGuess, EventLeader:
		var p *Player
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return p, nil

	case EventUpdatePlayers:
		var p []Player
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return p, nil

	case EventKick:
		var nickname string
		if err := json.Unmarshal(data, &nickname); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return nickname, nil

	case EventStopRound:
		var p StopRoundPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return p, nil

	case EventStartChoose:
		var p StartChoosePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return p, nil

	case EventStartRound:
		var p StartRoundPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return p, nil

	case EventHostJoin:
		var p RoomPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", evt, err)
		}
		return p, nil

	case EventHostPlaySong:
		return Song(data), nil

	default:
		return nil, nil
	}
}
