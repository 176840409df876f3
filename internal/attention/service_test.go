package attention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/internal/records"
)

type fakeRecordsRepo struct {
	applicants []*records.Applicant
	leads      []*records.Lead
	err        error
}

func (f *fakeRecordsRepo) ListApplicants(context.Context) ([]*records.Applicant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.applicants, nil
}

func (f *fakeRecordsRepo) ListLeads(context.Context) ([]*records.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.leads, nil
}

type staticRules []engine.Rule

func (s staticRules) Active() []engine.Rule { return s }

func stuckRule(id string, kind engine.RecordKind, urgency engine.Urgency, minDays int) engine.Rule {
	return engine.Rule{
		ID:            id,
		Kind:          kind,
		Condition:     engine.ConditionPhaseTime,
		Config:        engine.ConditionConfig{Phase: engine.PhaseAny, MinDays: &minDays},
		Urgency:       urgency,
		TitleTemplate: "{{name}} needs attention",
		Enabled:       true,
	}
}

func stuckApplicant(id, name string, daysInPhase int) *records.Applicant {
	entered := time.Now().AddDate(0, 0, -daysInPhase)
	return &records.Applicant{
		ID:              id,
		FirstName:       name,
		Phase:           "screening",
		PhaseTimestamps: map[string]time.Time{"screening": entered},
		CreatedAt:       entered,
	}
}

func stuckLead(id, company string, daysInStage int) *records.Lead {
	entered := time.Now().AddDate(0, 0, -daysInStage)
	return &records.Lead{
		ID:           id,
		Company:      company,
		Stage:        "negotiation",
		StageEntered: map[string]time.Time{"negotiation": entered},
		CreatedAt:    entered,
	}
}

func TestServiceEvaluate_MergesBothKinds(t *testing.T) {
	repo := &fakeRecordsRepo{
		applicants: []*records.Applicant{stuckApplicant("ap-1", "Zoe", 10)},
		leads:      []*records.Lead{stuckLead("ld-1", "Initech", 10)},
	}
	rules := staticRules{
		stuckRule("r-applicant", engine.KindApplicant, engine.UrgencyWarning, 5),
		stuckRule("r-lead", engine.KindLead, engine.UrgencyCritical, 5),
	}
	svc := NewService(rules, repo, nil, nil, logger.NopLogger())

	items, err := svc.Evaluate(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Merged output is ordered by severity across kinds.
	assert.Equal(t, "ld-1", items[0].EntityID)
	assert.Equal(t, engine.KindLead, items[0].Kind)
	assert.Equal(t, "ap-1", items[1].EntityID)
	assert.Equal(t, engine.KindApplicant, items[1].Kind)
}

func TestServiceEvaluate_QueryFilters(t *testing.T) {
	repo := &fakeRecordsRepo{
		applicants: []*records.Applicant{
			stuckApplicant("ap-1", "Amy", 10),
			stuckApplicant("ap-2", "Zoe", 10),
		},
	}
	rules := staticRules{
		stuckRule("r-warning", engine.KindApplicant, engine.UrgencyWarning, 5),
		stuckRule("r-info", engine.KindApplicant, engine.UrgencyInfo, 5),
	}
	svc := NewService(rules, repo, nil, nil, logger.NopLogger())

	t.Run("urgency filter", func(t *testing.T) {
		items, err := svc.Evaluate(context.Background(), Query{Urgency: engine.UrgencyInfo})
		require.NoError(t, err)
		require.Len(t, items, 2)
		for _, item := range items {
			assert.Equal(t, engine.UrgencyInfo, item.Urgency)
		}
	})

	t.Run("limit", func(t *testing.T) {
		items, err := svc.Evaluate(context.Background(), Query{Limit: 1})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, engine.UrgencyWarning, items[0].Urgency)
		assert.Equal(t, "Amy", items[0].Name)
	})
}

func TestServiceEvaluate_LoadFailure(t *testing.T) {
	repo := &fakeRecordsRepo{err: errors.New("database down")}
	svc := NewService(staticRules{}, repo, nil, nil, logger.NopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := svc.Evaluate(ctx, Query{})
	assert.Error(t, err)
}

func TestServiceSummary(t *testing.T) {
	repo := &fakeRecordsRepo{
		applicants: []*records.Applicant{
			stuckApplicant("ap-1", "Amy", 10),
			stuckApplicant("ap-2", "Zoe", 10),
		},
		leads: []*records.Lead{stuckLead("ld-1", "Initech", 10)},
	}
	rules := staticRules{
		stuckRule("r-warning", engine.KindApplicant, engine.UrgencyWarning, 5),
		stuckRule("r-critical", engine.KindLead, engine.UrgencyCritical, 5),
	}
	svc := NewService(rules, repo, nil, nil, logger.NopLogger())

	summary, err := svc.Summary(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, map[engine.Urgency]int{
		engine.UrgencyCritical: 1,
		engine.UrgencyWarning:  2,
		engine.UrgencyInfo:     0,
	}, summary)
}

func TestApplyQuery(t *testing.T) {
	items := []engine.ActionItem{
		{EntityID: "1", Urgency: engine.UrgencyCritical},
		{EntityID: "2", Urgency: engine.UrgencyWarning},
		{EntityID: "3", Urgency: engine.UrgencyWarning},
		{EntityID: "4", Urgency: engine.UrgencyInfo},
	}

	t.Run("zero query returns everything", func(t *testing.T) {
		assert.Len(t, applyQuery(items, Query{}), 4)
	})

	t.Run("urgency then limit", func(t *testing.T) {
		got := applyQuery(items, Query{Urgency: engine.UrgencyWarning, Limit: 1})
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].EntityID)
	})
}
