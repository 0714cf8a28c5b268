package webhooks

import (
	"context"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// Subscriber ingests webhook deliveries pushed to a Pub/Sub subscription.
// Messages carry the platform headers as attributes.
type Subscriber struct {
	sub     *pubsub.Subscription
	service *Service
	logger  *zap.Logger
}

// NewSubscriber creates a subscriber over sub.
func NewSubscriber(sub *pubsub.Subscription, service *Service, logger *zap.Logger) *Subscriber {
	return &Subscriber{sub: sub, service: service, logger: logger.With(zap.String("subscription", sub.ID()))}
}

// Run receives until ctx is cancelled. A message is acked once it was recorded or
// dead-lettered, and nacked for redelivery otherwise.
func (s *Subscriber) Run(ctx context.Context) error {
	s.logger.Info("Pub/Sub subscriber started")
	err := s.sub.Receive(ctx, s.handle)
	if err != nil && ctx.Err() == nil {
		return err
	}
	s.logger.Info("Pub/Sub subscriber stopped")
	return nil
}

func (s *Subscriber) handle(ctx context.Context, msg *pubsub.Message) {
	d := Delivery{
		Shop:      msg.Attributes[HeaderShopDomain],
		Topic:     msg.Attributes[HeaderTopic],
		WebhookID: msg.Attributes[HeaderWebhookID],
		Payload:   msg.Data,
	}

	report, err := s.service.Ingest(ctx, d)
	if err != nil {
		s.logger.Error("Pub/Sub delivery failed",
			zap.String("message_id", msg.ID),
			zap.String("topic", d.Topic),
			zap.Error(err),
		)
		msg.Nack()
		return
	}

	s.logger.Debug("Pub/Sub delivery handled",
		zap.String("message_id", msg.ID),
		zap.String("topic", d.Topic),
		zap.Int("results", len(report.Results)),
		zap.String("dead_letter", report.DeadLetter),
	)
	msg.Ack()
}
