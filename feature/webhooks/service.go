package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/storage"

	"go.uber.org/zap"
)

// ErrUnknownTopic is returned for deliveries of a topic no adapter handles.
var ErrUnknownTopic = errors.New("unknown webhook topic")

// Delivery is one webhook as received, over HTTP or Pub/Sub.
type Delivery struct {
	Shop      string
	Topic     string
	WebhookID string
	Payload   []byte
}

// Report summarizes what happened to a delivery.
type Report struct {
	Shop    string              `json:"shop"`
	Topic   string              `json:"topic"`
	Results []*reconcile.Result `json:"results"`
	// Errors lists the changes that could not be recorded.
	Errors []string `json:"errors,omitempty"`
	// DeadLetter is the archive key when the delivery was dead-lettered.
	DeadLetter string `json:"dead_letter,omitempty"`
}

// Failed reports whether any part of the delivery was not recorded.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// Reconciler is the part of the engine the service drives.
type Reconciler interface {
	Reconcile(ctx context.Context, raw reconcile.RawChange) (*reconcile.Result, error)
	Prepare(ctx context.Context, raw reconcile.RawChange) (*reconcile.Plan, error)
}

// Archiver durably keeps failed deliveries.
type Archiver interface {
	Archive(ctx context.Context, letter storage.Letter) (string, error)
}

// Service routes deliveries to adapters and reconciles the resulting changes.
type Service struct {
	engine   Reconciler
	adapters map[string]reconcile.Adapter
	archive  Archiver
	logger   *zap.Logger
}

// NewService creates the ingestion service. archive may be nil, in which case any
// failure is returned to the caller so the delivery is retried upstream.
func NewService(engine Reconciler, archive Archiver, logger *zap.Logger, adapters ...reconcile.Adapter) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		engine:   engine,
		adapters: make(map[string]reconcile.Adapter, len(adapters)),
		archive:  archive,
		logger:   logger,
	}
	for _, a := range adapters {
		s.adapters[a.Name()] = a
	}
	return s
}

// Topics returns the handled topics.
func (s *Service) Topics() []string {
	topics := make([]string, 0, len(s.adapters))
	for t := range s.adapters {
		topics = append(topics, t)
	}
	return topics
}

// Ingest processes a delivery and dead-letters it when any change fails. The
// returned error is non-nil only when the failure could not be archived; callers
// then make the platform redeliver.
func (s *Service) Ingest(ctx context.Context, d Delivery) (*Report, error) {
	report, err := s.Process(ctx, d)
	if err == nil && !report.Failed() {
		return report, nil
	}
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
	}

	log := s.logger.With(zap.String("shop", d.Shop), zap.String("topic", d.Topic), zap.String("webhook_id", d.WebhookID))
	if s.archive == nil {
		return report, fmt.Errorf("delivery failed and no dead-letter archive is configured: %s", strings.Join(report.Errors, "; "))
	}

	headers := map[string]string{}
	if d.WebhookID != "" {
		headers["X-Shopify-Webhook-Id"] = d.WebhookID
	}
	key, archiveErr := s.archive.Archive(ctx, storage.Letter{
		Shop:    d.Shop,
		Topic:   d.Topic,
		Error:   strings.Join(report.Errors, "; "),
		Headers: headers,
		Payload: d.Payload,
	})
	if archiveErr != nil {
		log.Error("Failed to dead-letter delivery", zap.Strings("errors", report.Errors), zap.Error(archiveErr))
		return report, archiveErr
	}

	report.DeadLetter = key
	log.Warn("Delivery dead-lettered", zap.String("key", key), zap.Strings("errors", report.Errors))
	return report, nil
}

// Process reconciles every change of a delivery without dead-lettering. Per-change
// failures are collected in the report; the error covers the delivery as a whole
// (unknown topic, unparseable payload, failed enrichment).
func (s *Service) Process(ctx context.Context, d Delivery) (*Report, error) {
	report := &Report{Shop: d.Shop, Topic: d.Topic}

	changes, err := s.changes(ctx, d)
	if err != nil {
		return report, err
	}

	for _, raw := range changes {
		result, err := s.engine.Reconcile(ctx, raw)
		if err != nil {
			s.logger.Error("Failed to reconcile change",
				zap.String("shop", d.Shop),
				zap.String("topic", d.Topic),
				zap.String("idempotency_key", raw.IdempotencyKey),
				zap.Error(err),
			)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", raw.IdempotencyKey, err))
			continue
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// Plan reports what a delivery would do without writing.
func (s *Service) Plan(ctx context.Context, d Delivery) ([]*reconcile.Plan, error) {
	changes, err := s.changes(ctx, d)
	if err != nil {
		return nil, err
	}
	plans := make([]*reconcile.Plan, 0, len(changes))
	for _, raw := range changes {
		plan, err := s.engine.Prepare(ctx, raw)
		if err != nil {
			return plans, fmt.Errorf("%s: %w", raw.IdempotencyKey, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (s *Service) changes(ctx context.Context, d Delivery) ([]reconcile.RawChange, error) {
	if d.Shop == "" {
		return nil, fmt.Errorf("%w: missing shop domain", reconcile.ErrMalformedInput)
	}
	adapter, ok := s.adapters[d.Topic]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, d.Topic)
	}
	return adapter.Changes(ctx, d.Shop, d.Payload)
}
