package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Envelope is the wire form of every backbone event. Origin is the instance
// id of the publisher.
type Envelope struct {
	Type       EventType       `json:"type"`
	RoomID     string          `json:"roomId,omitempty"`
	UserID     string          `json:"userId,omitempty"`
	Origin     string          `json:"origin"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope encodes payload into an envelope.
func NewEnvelope(eventType EventType, roomID, userID, origin string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		Type:       eventType,
		RoomID:     roomID,
		UserID:     userID,
		Origin:     origin,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unmarshals the payload into dst.
func (e Envelope) DecodePayload(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope has no type")
	}
	return env, nil
}
