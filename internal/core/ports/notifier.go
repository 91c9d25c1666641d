package ports

import "context"

// Notification is an outbound e-mail message.
type Notification struct {
	To      string
	Subject string
	Text    string
}

// WelcomeNotifier is fire-and-forget: it must never block or fail the caller.
type WelcomeNotifier interface {
	NotifyWelcome(email, name string)
}

// NotificationSender delivers a single notification.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}
