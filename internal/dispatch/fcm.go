package dispatch

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// FCMNotifier pushes summaries to the operator topic via Firebase Cloud
// Messaging. The operators' app subscribes to the topic.
type FCMNotifier struct {
	client *messaging.Client
	topic  string
}

func NewFCMNotifier(client *messaging.Client, topic string) *FCMNotifier {
	return &FCMNotifier{client: client, topic: topic}
}

func (n *FCMNotifier) Notify(ctx context.Context, summary string) error {
	msg := &messaging.Message{
		Topic: n.topic,
		Notification: &messaging.Notification{
			Title: "Mashwar",
			Body:  summary,
		},
		Data: map[string]string{"summary": summary},
	}
	if _, err := n.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
