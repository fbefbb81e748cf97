package modules

import (
	"context"

	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/notification"
)

// NotificationModule announces committed provider config changes.
type NotificationModule struct {
	triggers *notification.Triggers
}

// NewNotificationModule delivers notifications on the shared worker pool.
func NewNotificationModule(infra *Infrastructure) *NotificationModule {
	return &NotificationModule{
		triggers: notification.NewTriggers(notification.NewLogSender(), infra.Pools),
	}
}

func (m *NotificationModule) Name() string { return "notification" }

func (m *NotificationModule) ContributeServerDeps(*handlers.ServerDeps) {}

func (m *NotificationModule) RegisterEventHandlers(d *domain.EventDispatcher) {
	m.triggers.Register(d)
}

func (m *NotificationModule) Shutdown(context.Context) error { return nil }
