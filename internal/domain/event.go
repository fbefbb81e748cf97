package domain

import (
	"encoding/json"
	"time"
)

// EventType defines the type of domain event.
type EventType string

const (
	EventProviderConfigCreated EventType = "AUTH_PROVIDER_CONFIG_CREATED"
	EventProviderConfigUpdated EventType = "AUTH_PROVIDER_CONFIG_UPDATED"
)

// DomainEvent is an immutable record of a committed change, dispatched after commit.
type DomainEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	Payload       []byte    `json:"payload"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProviderConfigChangedPayload is the payload for provider config events.
type ProviderConfigChangedPayload struct {
	ConfigID      int64    `json:"config_id"`
	PHID          string   `json:"phid"`
	ProviderClass string   `json:"provider_class"`
	Applied       []string `json:"applied"`
	Skipped       []string `json:"skipped,omitempty"`
}

// ToJSON converts payload to JSON bytes.
func (p ProviderConfigChangedPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}
