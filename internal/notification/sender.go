// Package notification announces committed auth provider config changes to
// administrators. Delivery runs on the worker pool after the write commits.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"warden.dev/warden/internal/pkg/logger"
)

// Type constants matching the domain event types they are built from.
const (
	TypeProviderConfigCreated = "AUTH_PROVIDER_CONFIG_CREATED"
	TypeProviderConfigUpdated = "AUTH_PROVIDER_CONFIG_UPDATED"
)

// Params holds the required fields for one notification.
type Params struct {
	Type         string // One of Type* constants above
	Title        string
	Message      string
	Actor        string
	ResourceType string // "auth_provider_config"
	ResourceID   string // PHID of the config
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, params Params) error
}

// LogSender writes notifications to the structured "notification" log stream.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender creates a sender on the named notification logger.
func NewLogSender() *LogSender {
	return &LogSender{log: logger.Named("notification")}
}

// Send logs one notification.
func (s *LogSender) Send(_ context.Context, params Params) error {
	if err := validateParams(params); err != nil {
		return fmt.Errorf("notification params invalid: %w", err)
	}
	s.log.Info(params.Title,
		zap.String("type", params.Type),
		zap.String("message", params.Message),
		zap.String("actor", params.Actor),
		zap.String("resource_type", params.ResourceType),
		zap.String("resource_id", params.ResourceID),
	)
	return nil
}

// compile-time check
var _ Sender = (*LogSender)(nil)

func validateParams(p Params) error {
	if p.Type == "" {
		return fmt.Errorf("type is required")
	}
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.ResourceID == "" {
		return fmt.Errorf("resource_id is required")
	}
	return nil
}
