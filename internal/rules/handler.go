package rules

import (
	"context"
	"encoding/json"

	"beacon/internal/logger"
	"beacon/pkg/models"
)

// Reloader is what the event handler needs from the rule service.
type Reloader interface {
	ReloadRules(ctx context.Context, skipJitter ...bool) error
}

// Handler reacts to rule-change events published by the management service
// so a rule edit takes effect without waiting for the next periodic reload.
type Handler struct {
	reloader Reloader
	logger   logger.Logger
}

func NewHandler(reloader Reloader, log logger.Logger) *Handler {
	return &Handler{
		reloader: reloader,
		logger:   log,
	}
}

func (h *Handler) HandleConfigUpdateEvent(ctx context.Context, envelope models.MessageEnvelope) error {
	eventType, ok := envelope.Payload["event_type"].(string)
	if !ok {
		h.logger.Warnw("Config event missing event_type", "id", envelope.ID)
		return nil
	}
	if eventType != models.EventTypeAttentionRuleUpdated {
		return nil
	}

	var event models.ConfigUpdateEvent
	eventJSON, err := json.Marshal(envelope.Payload)
	if err != nil {
		h.logger.Errorw("Failed to marshal event payload", "error", err, "id", envelope.ID)
		return err
	}
	if err := json.Unmarshal(eventJSON, &event); err != nil {
		h.logger.Errorw("Failed to unmarshal config event", "error", err, "id", envelope.ID)
		return err
	}

	h.logger.InfowCtx(ctx, "Received rule update event",
		"action", event.Action,
		"rule_id", event.RuleID,
	)

	if err := h.reloader.ReloadRules(ctx, true); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to reload rules after update event", "error", err)
		return err
	}
	return nil
}
