package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/config"
	"beacon/internal/engine"
	"beacon/internal/management"
	"beacon/internal/rules"
)

func TestRulesRepository_GetActiveRules(t *testing.T) {
	infra := SetupTestInfra(t)
	writeRepo := management.NewRepository(infra.PostgresDB)
	readRepo := rules.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	enabled := createTestRule("enabled-low", engine.KindApplicant, engine.UrgencyWarning, 5, 1)
	enabled.Guard = `kind == "applicant"`
	enabled.Escalation = &engine.Escalation{MinDays: 30, Urgency: engine.UrgencyCritical}
	require.NoError(t, writeRepo.CreateRule(ctx, enabled))

	priority := createTestRule("enabled-high", engine.KindLead, engine.UrgencyInfo, 2, 99)
	require.NoError(t, writeRepo.CreateRule(ctx, priority))

	disabled := createTestRule("disabled", engine.KindApplicant, engine.UrgencyCritical, 1, 500)
	disabled.Enabled = false
	require.NoError(t, writeRepo.CreateRule(ctx, disabled))

	active, err := readRepo.GetActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2, "disabled rules never reach the engine")

	assert.Equal(t, priority.ID, active[0].ID, "highest priority first")

	loaded := findRule(t, active, enabled.ID)
	assert.Equal(t, engine.KindApplicant, loaded.Kind)
	assert.Equal(t, engine.ConditionPhaseTime, loaded.Condition)
	assert.Equal(t, engine.UrgencyWarning, loaded.Urgency)
	require.NotNil(t, loaded.Config.MinDays)
	assert.Equal(t, 5, *loaded.Config.MinDays)
	assert.Equal(t, `kind == "applicant"`, loaded.Guard)
	require.NotNil(t, loaded.Escalation)
	assert.Equal(t, 30, loaded.Escalation.MinDays)
	assert.Equal(t, engine.UrgencyCritical, loaded.Escalation.Urgency)
	assert.True(t, loaded.Enabled)
}

func findRule(t *testing.T, list []engine.Rule, id string) engine.Rule {
	t.Helper()
	for _, rule := range list {
		if rule.ID == id {
			return rule
		}
	}
	t.Fatalf("rule %s not found", id)
	return engine.Rule{}
}

func TestRulesService_ReloadFromStore(t *testing.T) {
	infra := SetupTestInfra(t)
	writeRepo := management.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	svc := rules.NewService(rules.NewRepository(infra.PostgresDB), config.ReloadConfig{}, createTestLogger())

	require.NoError(t, svc.ReloadRules(ctx, true))
	assert.Empty(t, svc.Active())

	require.NoError(t, writeRepo.CreateRule(ctx, createTestRule("fresh-rule", engine.KindApplicant, engine.UrgencyInfo, 1, 0)))

	require.NoError(t, svc.ReloadRules(ctx, true))
	assert.Len(t, svc.Active(), 1)
}
