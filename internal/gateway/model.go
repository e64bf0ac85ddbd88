package gateway

import (
	"encoding/json"

	"github.com/eleven-am/peergrade/internal/session"
)

const (
	EventIdentify        = "identify"
	EventCreateSession   = "host-create-session"
	EventSelectEndpoint  = "host-select-endpoint"
	EventUpdateStatus    = "host-update-status"
	EventSubmitVote      = "student-submit-vote"
	EventStateUpdate     = "state-update"
	EventForceDisconnect = "force-disconnect"
	EventErrorMessage    = "error-message"
)

// Message is the wire envelope in both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewMessage(event string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Event: event, Data: data}, nil
}

type CreateSessionRequest struct {
	Name       string             `json:"name"`
	Categories []session.Category `json:"categories"`
}

type VoteSubmission struct {
	Items []session.VoteItem `json:"items"`
}

// Client is one live connection as the hub sees it.
type Client interface {
	ID() string
	RemoteAddr() string
	Send(msg *Message) error
	Close() error
}
