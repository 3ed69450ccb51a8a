// Package notify delivers completion notifications for queued tasks.
package notify

import (
	"context"
)

// Notifier sends a notification.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}

// NoOpNotifier does nothing.
type NoOpNotifier struct{}

func (n *NoOpNotifier) Send(ctx context.Context, title, body string) error {
	return nil
}
