package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/pkg/logger"
	"warden.dev/warden/internal/pkg/worker"
)

// Submitter runs a task detached from the request that triggered it.
type Submitter interface {
	SubmitDetached(task worker.Task) error
}

// Triggers turns provider config events into notifications.
type Triggers struct {
	sender Sender
	pool   Submitter
}

// NewTriggers creates the trigger service. With a nil pool, delivery is synchronous.
func NewTriggers(sender Sender, pool Submitter) *Triggers {
	return &Triggers{sender: sender, pool: pool}
}

// Register subscribes the triggers to the provider config events.
func (t *Triggers) Register(d *domain.EventDispatcher) {
	d.Register(domain.EventProviderConfigCreated, t.OnProviderConfigChanged)
	d.Register(domain.EventProviderConfigUpdated, t.OnProviderConfigChanged)
}

// OnProviderConfigChanged builds the notification and hands it to the pool.
// Only payload decoding errors are returned; delivery failures are logged.
func (t *Triggers) OnProviderConfigChanged(ctx context.Context, event *domain.DomainEvent) error {
	params, err := paramsFor(event)
	if err != nil {
		return err
	}

	send := func(ctx context.Context) {
		if err := t.sender.Send(ctx, params); err != nil {
			logger.Error("notification delivery failed",
				zap.String("event_id", event.EventID),
				zap.String("type", params.Type),
				zap.Error(err),
			)
		}
	}
	if t.pool == nil {
		send(ctx)
		return nil
	}
	if err := t.pool.SubmitDetached(send); err != nil {
		logger.Warn("notification dropped: pool unavailable",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
	return nil
}

func paramsFor(event *domain.DomainEvent) (Params, error) {
	var payload domain.ProviderConfigChangedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return Params{}, fmt.Errorf("decode %s payload: %w", event.EventType, err)
	}

	params := Params{
		Type:         string(event.EventType),
		Actor:        event.CreatedBy,
		ResourceType: event.AggregateType,
		ResourceID:   payload.PHID,
	}
	switch event.EventType {
	case domain.EventProviderConfigCreated:
		params.Title = fmt.Sprintf("Auth provider %s configured", payload.ProviderClass)
	default:
		params.Title = fmt.Sprintf("Auth provider %s updated", payload.ProviderClass)
	}
	params.Message = fmt.Sprintf("%s applied %d change(s)", event.CreatedBy, len(payload.Applied))
	if len(payload.Applied) > 0 {
		params.Message += ": " + strings.Join(payload.Applied, ", ")
	}
	return params, nil
}
