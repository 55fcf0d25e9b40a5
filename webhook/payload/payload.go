package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// eventTypePattern validates event types: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// Envelope is the body shape produced by PublishData
type Envelope struct {
	// ID identifies the event occurrence, shared by every delivery of it
	ID string `json:"id"`

	// Type is the event tag, e.g. "journey.stage_changed"
	Type string `json:"type"`

	// TenantID is the clinic the event belongs to
	TenantID string `json:"tenant_id"`

	// Timestamp is when the event was published
	Timestamp time.Time `json:"timestamp"`

	// Data is the producer supplied body
	Data json.RawMessage `json:"data"`
}

// Validate validates the envelope structure
func (p Envelope) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}

	if err := ValidateEventType(p.Type); err != nil {
		return err
	}

	if p.TenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}

	if p.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	if len(p.Data) == 0 {
		return fmt.Errorf("data is required")
	}

	if !json.Valid(p.Data) {
		return fmt.Errorf("data must be valid JSON")
	}

	return nil
}

// MarshalJSON returns the JSON encoding of the envelope
func (p Envelope) MarshalJSON() ([]byte, error) {
	type Alias Envelope
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: p.Timestamp.Format(time.RFC3339Nano),
		Alias:     (*Alias)(&p),
	})
}

// UnmarshalJSON parses the JSON-encoded data and stores the result
func (p *Envelope) UnmarshalJSON(data []byte) error {
	type Alias Envelope
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(p),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshaling envelope: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, aux.Timestamp)
	if err != nil {
		timestamp, err = time.Parse(time.RFC3339, aux.Timestamp)
		if err != nil {
			return fmt.Errorf("parsing timestamp: %w", err)
		}
	}
	p.Timestamp = timestamp

	return nil
}

// New creates an Envelope with a fresh id for the given type, tenant and data
func New(eventType, tenantID string, data interface{}) (Envelope, error) {
	var dataBytes []byte
	switch v := data.(type) {
	case json.RawMessage:
		dataBytes = v
	case []byte:
		dataBytes = v
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshaling data: %w", err)
		}
		dataBytes = b
	}

	env := Envelope{
		ID:        uuid.New().String(),
		Type:      eventType,
		TenantID:  tenantID,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}

	if err := env.Validate(); err != nil {
		return Envelope{}, fmt.Errorf("validating envelope: %w", err)
	}

	return env, nil
}

// Parse parses a JSON body into an Envelope
func Parse(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshaling envelope: %w", err)
	}

	if err := env.Validate(); err != nil {
		return Envelope{}, fmt.Errorf("validating envelope: %w", err)
	}

	return env, nil
}

// Bytes returns the minified JSON encoding, the exact bytes that get signed
func (p Envelope) Bytes() ([]byte, error) {
	return json.Marshal(p)
}

// ValidateEventType validates an event type format
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}

	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", eventType)
	}

	return nil
}
