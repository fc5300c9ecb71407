package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"scentswap/internal/domain/service"
)

type fcmNotifier struct {
	client *messaging.Client
}

// NewFCMNotifier returns a Notifier that pushes lifecycle notices over
// Firebase Cloud Messaging.
func NewFCMNotifier(client *messaging.Client) service.Notifier {
	return &fcmNotifier{
		client: client,
	}
}

func (n *fcmNotifier) SendAcceptanceNotice(ctx context.Context, deviceToken, offeredTitle, requestedTitle string) error {
	return n.send(ctx, deviceToken, "swap_accepted",
		"Swap accepted",
		fmt.Sprintf("Your swap of %s for %s was accepted. Confirm your shipping address to continue.", offeredTitle, requestedTitle))
}

func (n *fcmNotifier) SendCompletionNotice(ctx context.Context, deviceToken, offeredTitle, requestedTitle string) error {
	return n.send(ctx, deviceToken, "swap_completed",
		"Swap completed",
		fmt.Sprintf("Both packages are on the way! Your swap of %s for %s is complete.", offeredTitle, requestedTitle))
}

func (n *fcmNotifier) send(ctx context.Context, deviceToken, event, title, body string) error {
	_, err := n.client.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"event": event,
		},
	})
	return err
}
