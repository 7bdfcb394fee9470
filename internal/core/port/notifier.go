package port

import "context"

// Notifier delivers account-related email to dealers. Delivery is
// synchronous; callers decide whether a failure is fatal.
type Notifier interface {
	// Available reports whether the notification channel is configured and
	// reachable. Operations that promise delivery check this before mutating
	// any state.
	Available(ctx context.Context) error
	SendWelcome(ctx context.Context, to, username, password string) error
	SendResetLink(ctx context.Context, to, resetURL string) error
	SendAdminReset(ctx context.Context, to, username, password string) error
}
