package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/logger"
	"beacon/pkg/models"
)

type fakeReloader struct {
	calls      int
	skipJitter bool
	err        error
}

func (f *fakeReloader) ReloadRules(_ context.Context, skipJitter ...bool) error {
	f.calls++
	f.skipJitter = len(skipJitter) > 0 && skipJitter[0]
	return f.err
}

func ruleUpdatedEnvelope(action string) models.MessageEnvelope {
	return models.MessageEnvelope{
		ID:        "evt-1",
		Source:    "management-service",
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"event_type": models.EventTypeAttentionRuleUpdated,
			"rule_id":    "rule-42",
			"action":     action,
		},
	}
}

func TestHandleConfigUpdateEvent_TriggersReload(t *testing.T) {
	reloader := &fakeReloader{}
	h := NewHandler(reloader, logger.NopLogger())

	err := h.HandleConfigUpdateEvent(context.Background(), ruleUpdatedEnvelope(models.ActionUpdate))
	require.NoError(t, err)
	assert.Equal(t, 1, reloader.calls)
	assert.True(t, reloader.skipJitter)
}

func TestHandleConfigUpdateEvent_IgnoresOtherEventTypes(t *testing.T) {
	reloader := &fakeReloader{}
	h := NewHandler(reloader, logger.NopLogger())

	envelope := ruleUpdatedEnvelope(models.ActionUpdate)
	envelope.Payload["event_type"] = "something_else"

	require.NoError(t, h.HandleConfigUpdateEvent(context.Background(), envelope))
	assert.Zero(t, reloader.calls)
}

func TestHandleConfigUpdateEvent_MissingEventType(t *testing.T) {
	reloader := &fakeReloader{}
	h := NewHandler(reloader, logger.NopLogger())

	envelope := ruleUpdatedEnvelope(models.ActionUpdate)
	delete(envelope.Payload, "event_type")

	require.NoError(t, h.HandleConfigUpdateEvent(context.Background(), envelope))
	assert.Zero(t, reloader.calls)
}

func TestHandleConfigUpdateEvent_PropagatesReloadFailure(t *testing.T) {
	reloader := &fakeReloader{err: errors.New("store unavailable")}
	h := NewHandler(reloader, logger.NopLogger())

	err := h.HandleConfigUpdateEvent(context.Background(), ruleUpdatedEnvelope(models.ActionDelete))
	assert.Error(t, err)
}
