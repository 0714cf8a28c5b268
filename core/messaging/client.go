package messaging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NewClient connects to Pub/Sub. Extra options are appended after the credentials,
// which lets tests point the client at an in-process server.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*pubsub.Client, error) {
	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if projectID == "" {
		return nil, errors.New("pubsub project id not set")
	}

	var all []option.ClientOption
	if cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	all = append(all, opts...)

	client, err := pubsub.NewClient(ctx, projectID, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return client, nil
}

// Subscription returns the configured subscription, creating the topic and
// subscription first when cfg.CreateSubscription is set.
func Subscription(ctx context.Context, client *pubsub.Client, cfg Config) (*pubsub.Subscription, error) {
	if cfg.Subscription == "" {
		return nil, errors.New("subscription name is required")
	}

	sub := client.Subscription(cfg.Subscription)
	if !cfg.CreateSubscription {
		return configure(sub, cfg), nil
	}

	topic, err := ensureTopic(ctx, client, cfg.Topic)
	if err != nil {
		return nil, err
	}

	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription %q: %w", cfg.Subscription, err)
	}
	if !exists {
		deadline := cfg.AckDeadline
		if deadline <= 0 {
			deadline = 30 * time.Second
		}
		sub, err = client.CreateSubscription(ctx, cfg.Subscription, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: deadline,
		})
		if err != nil {
			return nil, fmt.Errorf("create subscription %q: %w", cfg.Subscription, err)
		}
	}
	return configure(sub, cfg), nil
}

func ensureTopic(ctx context.Context, client *pubsub.Client, name string) (*pubsub.Topic, error) {
	if name == "" {
		return nil, errors.New("topic is required")
	}
	topic := client.Topic(name)
	ok, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %q: %w", name, err)
	}
	if ok {
		return topic, nil
	}
	topic, err = client.CreateTopic(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create topic %q: %w", name, err)
	}
	return topic, nil
}

func configure(sub *pubsub.Subscription, cfg Config) *pubsub.Subscription {
	if cfg.MaxOutstanding > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstanding
	}
	return sub
}
