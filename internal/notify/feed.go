package notify

import (
	"context"
	"sync"
	"time"

	"seodash/domain/core"
	"seodash/internal"
	"seodash/ports"
)

// Feed keeps the most recent notifications in memory and echoes each one to
// the log. It satisfies ports.Notifier.
type Feed struct {
	mu      sync.Mutex
	history int
	items   []ports.Notification
	logger  *internal.Logger
	now     func() time.Time
}

// NewFeed creates a feed retaining at most history notifications
func NewFeed(history int, logger *internal.Logger) *Feed {
	if history <= 0 {
		history = 50
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Feed{
		history: history,
		logger:  logger.WithComponent("Notify"),
		now:     time.Now,
	}
}

// Notify records a notification
func (f *Feed) Notify(_ context.Context, level ports.NotificationLevel, message string) {
	n := ports.Notification{
		ID:        core.NewID(),
		Level:     level,
		Message:   message,
		CreatedAt: f.now(),
	}

	f.mu.Lock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.history; over > 0 {
		f.items = append([]ports.Notification(nil), f.items[over:]...)
	}
	f.mu.Unlock()

	if level == ports.NotificationError {
		f.logger.Warn("%s", message)
		return
	}
	f.logger.Info("%s", message)
}

// Recent returns the retained notifications, newest first
func (f *Feed) Recent() []ports.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]ports.Notification, len(f.items))
	for i, n := range f.items {
		out[len(f.items)-1-i] = n
	}
	return out
}

// Clear drops all retained notifications
func (f *Feed) Clear() {
	f.mu.Lock()
	f.items = nil
	f.mu.Unlock()
}
