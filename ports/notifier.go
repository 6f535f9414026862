package ports

import (
	"context"
	"time"

	"seodash/domain/core"
)

// NotificationLevel grades a user-facing notification
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a single user-facing status message
type Notification struct {
	ID        core.ID           `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notifier delivers status messages to the user
type Notifier interface {
	Notify(ctx context.Context, level NotificationLevel, message string)
}
