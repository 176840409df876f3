package attention

import (
	"context"
	"time"

	"github.com/google/uuid"

	"beacon/internal/broker"
	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/pkg/metrics"
	"beacon/pkg/models"
)

// Digester periodically publishes the top attention items to the digest
// topic, where downstream delivery (chat, email, dashboards) picks them up.
// The cadence is caller policy, configured here, never inside the engine.
type Digester struct {
	service  *Service
	producer broker.Producer
	cfg      config.DigestConfig
	logger   logger.Logger
}

func NewDigester(service *Service, producer broker.Producer, cfg config.DigestConfig, log logger.Logger) *Digester {
	return &Digester{
		service:  service,
		producer: producer,
		cfg:      cfg,
		logger:   log,
	}
}

func (d *Digester) Start(ctx context.Context) error {
	interval := time.Duration(d.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = constants.DefaultDigestInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := d.Publish(ctx); err != nil {
				d.logger.ErrorwCtx(ctx, "Failed to publish attention digest",
					"error", err,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Publish evaluates fresh (digests must not serve a stale snapshot) and
// pushes one envelope with the counts and the top items.
func (d *Digester) Publish(ctx context.Context) error {
	items, err := d.service.Evaluate(ctx, Query{Refresh: true})
	if err != nil {
		metrics.DigestsPublishedTotal.WithLabelValues("error").Inc()
		return err
	}

	counts := map[string]int{}
	for _, item := range items {
		counts[string(item.Urgency)]++
	}

	top := items
	if d.cfg.MaxItems > 0 && len(top) > d.cfg.MaxItems {
		top = top[:d.cfg.MaxItems]
	}

	envelope := models.MessageEnvelope{
		ID:        uuid.New().String(),
		Source:    "attention-service",
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"generated_at": time.Now(),
			"total":        len(items),
			"critical":     counts[string(engine.UrgencyCritical)],
			"warning":      counts[string(engine.UrgencyWarning)],
			"info":         counts[string(engine.UrgencyInfo)],
			"items":        top,
		},
	}

	if err := d.producer.Publish(ctx, d.cfg.Topic, envelope); err != nil {
		metrics.DigestsPublishedTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.DigestsPublishedTotal.WithLabelValues("ok").Inc()
	d.logger.InfowCtx(ctx, "Published attention digest",
		"topic", d.cfg.Topic,
		"total", len(items),
		"included", len(top),
	)
	return nil
}
