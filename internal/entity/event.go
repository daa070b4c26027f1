package entity

import (
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Outbound event types published after successful operations.
const (
	EventSurveyCreated    = "survey.created"
	EventSurveyUpdated    = "survey.updated"
	EventSurveyDeleted    = "survey.deleted"
	EventResponseAccepted = "response.accepted"
)

// Event is the broker envelope for both inbound commands and outbound
// notifications.
type Event struct {
	ID        string    `json:"id"`
	Payload   []byte    `json:"payload"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(Type string, payload []byte) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Payload:   payload,
		Type:      Type,
		Timestamp: time.Now(),
	}
}

// NewEventFrom marshals the payload and wraps it in an envelope.
func NewEventFrom(Type string, payload any) (*Event, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return NewEvent(Type, body), nil
}

func (e *Event) Validate() error {
	if e.ID == "" {
		return errors.New("event_id is nil")
	}

	if e.Payload == nil {
		return errors.New("payload is nil")
	}

	if e.Type == "" {
		return errors.New("type is nil")
	}

	return nil
}
