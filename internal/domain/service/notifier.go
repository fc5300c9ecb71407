package service

import "context"

// Notifier dispatches swap lifecycle notices to a party's device. Dispatch is
// best-effort: the state machine logs failures and never rolls back on them.
type Notifier interface {
	SendAcceptanceNotice(ctx context.Context, deviceToken, offeredTitle, requestedTitle string) error
	SendCompletionNotice(ctx context.Context, deviceToken, offeredTitle, requestedTitle string) error
}
