package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/engine"
	"beacon/internal/management"
	pkgerrors "beacon/pkg/errors"
)

func TestManagementRepository_CRUD(t *testing.T) {
	infra := SetupTestInfra(t)
	repo := management.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	rule := createTestRule("stuck-anywhere", engine.KindApplicant, engine.UrgencyWarning, 5, 10)
	rule.Escalation = &engine.Escalation{MinDays: 14, Urgency: engine.UrgencyCritical}
	rule.Guard = `days_in_phase > 2`

	require.NoError(t, repo.CreateRule(ctx, rule))
	require.NotEmpty(t, rule.ID)

	t.Run("get round-trips every field", func(t *testing.T) {
		got, err := repo.GetRule(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, rule.Name, got.Name)
		assert.Equal(t, rule.RecordKind, got.RecordKind)
		assert.Equal(t, rule.ConditionKind, got.ConditionKind)
		assert.Equal(t, engine.PhaseAny, got.Config.Phase)
		require.NotNil(t, got.Config.MinDays)
		assert.Equal(t, 5, *got.Config.MinDays)
		require.NotNil(t, got.Escalation)
		assert.Equal(t, engine.UrgencyCritical, got.Escalation.Urgency)
		assert.Equal(t, `days_in_phase > 2`, got.Guard)
		assert.True(t, got.Enabled)
		assert.Equal(t, 10, got.Priority)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := repo.GetRule(ctx, rule.ID)
		require.NoError(t, err)
		updated.Urgency = string(engine.UrgencyCritical)
		updated.Enabled = false
		require.NoError(t, repo.UpdateRule(ctx, updated))

		got, err := repo.GetRule(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, string(engine.UrgencyCritical), got.Urgency)
		assert.False(t, got.Enabled)
	})

	t.Run("list orders by priority", func(t *testing.T) {
		higher := createTestRule("more-important", engine.KindLead, engine.UrgencyInfo, 3, 50)
		require.NoError(t, repo.CreateRule(ctx, higher))

		rules, err := repo.ListRules(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, "more-important", rules[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteRule(ctx, rule.ID))
		_, err := repo.GetRule(ctx, rule.ID)
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestManagementRepository_DuplicateName(t *testing.T) {
	infra := SetupTestInfra(t)
	repo := management.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	require.NoError(t, repo.CreateRule(ctx, createTestRule("unique-name", engine.KindApplicant, engine.UrgencyInfo, 1, 0)))

	err := repo.CreateRule(ctx, createTestRule("unique-name", engine.KindApplicant, engine.UrgencyInfo, 1, 0))
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestManagementRepository_NotFound(t *testing.T) {
	infra := SetupTestInfra(t)
	repo := management.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	missing := "00000000-0000-0000-0000-000000000000"

	_, err := repo.GetRule(ctx, missing)
	assert.True(t, pkgerrors.IsNotFound(err))

	ghost := createTestRule("ghost", engine.KindApplicant, engine.UrgencyInfo, 1, 0)
	ghost.ID = missing
	assert.True(t, pkgerrors.IsNotFound(repo.UpdateRule(ctx, ghost)))
	assert.True(t, pkgerrors.IsNotFound(repo.DeleteRule(ctx, missing)))
}
