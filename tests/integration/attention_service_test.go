package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/attention"
	"beacon/internal/config"
	"beacon/internal/engine"
	"beacon/internal/management"
	"beacon/internal/records"
	"beacon/internal/rules"
	"beacon/pkg/cel"
)

func TestAttentionPipeline_EndToEnd(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true)
	ctx := context.Background()

	writeRepo := management.NewRepository(infra.PostgresDB)

	stuck := createTestRule("stuck-applicants", engine.KindApplicant, engine.UrgencyWarning, 5, 10)
	stuck.Escalation = &engine.Escalation{MinDays: 30, Urgency: engine.UrgencyCritical}
	require.NoError(t, writeRepo.CreateRule(ctx, stuck))

	guarded := createTestRule("slow-leads", engine.KindLead, engine.UrgencyInfo, 3, 5)
	guarded.Guard = `phase == "negotiation"`
	require.NoError(t, writeRepo.CreateRule(ctx, guarded))

	now := time.Now().UTC()
	insertApplicant(t, infra.PostgresDB, applicantRow{
		firstName:       "Ada",
		phase:           "screening",
		phaseTimestamps: map[string]time.Time{"screening": now.AddDate(0, 0, -10)},
		createdAt:       now.AddDate(0, 0, -10),
	})
	insertApplicant(t, infra.PostgresDB, applicantRow{
		firstName:       "Grace",
		phase:           "screening",
		phaseTimestamps: map[string]time.Time{"screening": now.AddDate(0, 0, -40)},
		createdAt:       now.AddDate(0, 0, -40),
	})
	insertApplicant(t, infra.PostgresDB, applicantRow{
		firstName:       "Fresh",
		phase:           "screening",
		phaseTimestamps: map[string]time.Time{"screening": now},
		createdAt:       now,
	})
	insertLead(t, infra.PostgresDB, leadRow{
		company:      "Initech",
		stage:        "negotiation",
		stageEntered: map[string]time.Time{"negotiation": now.AddDate(0, 0, -4)},
		createdAt:    now.AddDate(0, 0, -4),
	})
	insertLead(t, infra.PostgresDB, leadRow{
		company:      "Hooli",
		stage:        "qualified",
		stageEntered: map[string]time.Time{"qualified": now.AddDate(0, 0, -4)},
		createdAt:    now.AddDate(0, 0, -4),
	})

	ruleService := rules.NewService(rules.NewRepository(infra.PostgresDB), config.ReloadConfig{}, createTestLogger())
	require.NoError(t, ruleService.ReloadRules(ctx, true))

	guard, err := cel.NewGuardEvaluator()
	require.NoError(t, err)

	snapshot := attention.NewSnapshotCache(infra.RedisClient, 30*time.Second, createTestLogger())
	svc := attention.NewService(ruleService, records.NewRepository(infra.PostgresDB), guard.Evaluate, snapshot, createTestLogger())

	items, err := svc.Evaluate(ctx, attention.Query{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Grace crossed the escalation threshold, Ada did not, and the guarded
	// lead rule only fires for the negotiation-stage lead.
	assert.Equal(t, engine.UrgencyCritical, items[0].Urgency)
	assert.Equal(t, "Grace", items[0].Name)
	assert.Equal(t, engine.UrgencyWarning, items[1].Urgency)
	assert.Equal(t, "Ada", items[1].Name)
	assert.Equal(t, engine.UrgencyInfo, items[2].Urgency)
	assert.Equal(t, "Initech", items[2].Name)
	assert.Equal(t, "Grace stuck for 40 days", items[0].Title)

	t.Run("second read hits the snapshot cache", func(t *testing.T) {
		cached, ok := snapshot.Get(ctx)
		require.True(t, ok)
		assert.Equal(t, items, cached)

		again, err := svc.Evaluate(ctx, attention.Query{})
		require.NoError(t, err)
		assert.Equal(t, items, again)
	})

	t.Run("summary", func(t *testing.T) {
		summary, err := svc.Summary(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, map[engine.Urgency]int{
			engine.UrgencyCritical: 1,
			engine.UrgencyWarning:  1,
			engine.UrgencyInfo:     1,
		}, summary)
	})

	t.Run("urgency filter and refresh", func(t *testing.T) {
		critical, err := svc.Evaluate(ctx, attention.Query{Urgency: engine.UrgencyCritical, Refresh: true})
		require.NoError(t, err)
		require.Len(t, critical, 1)
		assert.Equal(t, "Grace", critical[0].Name)
	})
}

func TestSnapshotCache_Expiry(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true)
	ctx := context.Background()

	cache := attention.NewSnapshotCache(infra.RedisClient, time.Second, createTestLogger())

	items := []engine.ActionItem{{EntityID: "ap-1", Kind: engine.KindApplicant, Urgency: engine.UrgencyWarning}}
	cache.Set(ctx, items)

	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, items, got)

	cache.Invalidate(ctx)
	_, ok = cache.Get(ctx)
	assert.False(t, ok)

	cache.Set(ctx, items)
	time.Sleep(1500 * time.Millisecond)
	_, ok = cache.Get(ctx)
	assert.False(t, ok, "entries expire after the TTL")
}
