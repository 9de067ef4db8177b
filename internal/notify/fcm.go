// Package notify delivers push notifications over Firebase Cloud
// Messaging. Farmers subscribe their device tokens to per-district topics
// and the weather sweep publishes to those topics.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// TopicForDistrict derives the FCM topic name a district's alerts publish
// to. Lowercased with spaces collapsed so the name stays FCM-safe.
func TopicForDistrict(district, state string) string {
	normalize := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	}
	return fmt.Sprintf("weather_alerts_%s_%s", normalize(district), normalize(state))
}

// FCM sends topic notifications and manages device subscriptions.
type FCM struct {
	client *messaging.Client
	logger *slog.Logger
}

// NewFCM initializes the Firebase app from a service account credentials
// file.
func NewFCM(ctx context.Context, credentialsPath string, logger *slog.Logger) (*FCM, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCM{client: client, logger: logger}, nil
}

// SendToTopic pushes one notification to every device subscribed to the
// topic.
func (f *FCM) SendToTopic(ctx context.Context, topic, title, body string) error {
	if topic == "" {
		return fmt.Errorf("empty topic")
	}
	id, err := f.client.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		return fmt.Errorf("send to topic %q: %w", topic, err)
	}
	f.logger.Info("notification sent", "topic", topic, "message_id", id)
	return nil
}

// Subscribe registers a device token on a topic.
func (f *FCM) Subscribe(ctx context.Context, token, topic string) error {
	if token == "" || topic == "" {
		return fmt.Errorf("empty token or topic")
	}
	resp, err := f.client.SubscribeToTopic(ctx, []string{token}, topic)
	if err != nil {
		return fmt.Errorf("subscribe to topic %q: %w", topic, err)
	}
	if resp.FailureCount > 0 {
		return fmt.Errorf("subscribe to topic %q: %d failures", topic, resp.FailureCount)
	}
	return nil
}
