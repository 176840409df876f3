package management

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/engine"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func validCreateRequest() CreateRuleRequest {
	return CreateRuleRequest{
		Name:          "stuck-in-screening",
		RecordKind:    "applicant",
		ConditionKind: "phase_time",
		Config:        engine.ConditionConfig{Phase: "screening", MinDays: intPtr(5)},
		Urgency:       "warning",
		TitleTemplate: "{{name}} stuck in {{phase_name}}",
	}
}

func TestValidateCreateRule(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, ValidateCreateRule(validCreateRequest()))
	})

	t.Run("invalid record kind", func(t *testing.T) {
		req := validCreateRequest()
		req.RecordKind = "customer"
		assert.ErrorContains(t, ValidateCreateRule(req), "invalid record_kind")
	})

	t.Run("unknown condition kind", func(t *testing.T) {
		req := validCreateRequest()
		req.ConditionKind = "moon_phase"
		assert.ErrorContains(t, ValidateCreateRule(req), "unknown condition_kind")
	})

	t.Run("invalid urgency", func(t *testing.T) {
		req := validCreateRequest()
		req.Urgency = "severe"
		assert.ErrorContains(t, ValidateCreateRule(req), "invalid urgency")
	})

	t.Run("invalid escalation urgency", func(t *testing.T) {
		req := validCreateRequest()
		req.Escalation = &engine.Escalation{MinDays: 10, Urgency: engine.Urgency("red")}
		assert.ErrorContains(t, ValidateCreateRule(req), "invalid escalation urgency")
	})

	t.Run("negative escalation threshold", func(t *testing.T) {
		req := validCreateRequest()
		req.Escalation = &engine.Escalation{MinDays: -1, Urgency: engine.UrgencyCritical}
		assert.ErrorContains(t, ValidateCreateRule(req), "min_days must be non-negative")
	})
}

func TestValidateCreateRule_ConditionConfig(t *testing.T) {
	valid := map[string]CreateRuleRequest{}
	for kind, cfg := range map[string]engine.ConditionConfig{
		"phase_time":          {Phase: engine.PhaseAny, MinDays: intPtr(3)},
		"task_incomplete":     {TaskID: "cv_review"},
		"task_stale":          {DoneTaskID: "offer_sent", PendingTaskID: "offer_signed", Phase: "offer", MinDays: intPtr(2)},
		"date_expiring":       {Field: "visa_expiry", DaysWarning: 30},
		"time_since_creation": {MinMinutes: intPtr(60)},
		"last_note_stale":     {MinDays: intPtr(14)},
		"sprint_deadline":     {Phase: "trial_sprint"},
	} {
		req := validCreateRequest()
		req.ConditionKind = kind
		req.Config = cfg
		valid[kind] = req
	}
	for kind, req := range valid {
		t.Run("valid "+kind, func(t *testing.T) {
			assert.NoError(t, ValidateCreateRule(req))
		})
	}

	tests := []struct {
		name    string
		kind    string
		cfg     engine.ConditionConfig
		wantErr string
	}{
		{"phase_time without phase", "phase_time", engine.ConditionConfig{MinDays: intPtr(3)}, "requires config.phase"},
		{"phase_time without min_days", "phase_time", engine.ConditionConfig{Phase: "screening"}, "requires config.min_days"},
		{"task_incomplete without task", "task_incomplete", engine.ConditionConfig{Phase: "screening"}, "requires config.task_id"},
		{"task_stale without tasks", "task_stale", engine.ConditionConfig{Phase: "offer", MinDays: intPtr(2)}, "done_task_id and config.pending_task_id"},
		{"task_stale with any phase", "task_stale", engine.ConditionConfig{DoneTaskID: "a", PendingTaskID: "b", Phase: engine.PhaseAny, MinDays: intPtr(2)}, "concrete config.phase"},
		{"task_stale without min_days", "task_stale", engine.ConditionConfig{DoneTaskID: "a", PendingTaskID: "b", Phase: "offer"}, "requires config.min_days"},
		{"date_expiring without field", "date_expiring", engine.ConditionConfig{DaysWarning: 30}, "requires config.field"},
		{"date_expiring without window", "date_expiring", engine.ConditionConfig{Field: "visa_expiry"}, "requires config.days_warning"},
		{"time_since_creation without threshold", "time_since_creation", engine.ConditionConfig{}, "min_minutes or config.min_days"},
		{"time_since_creation with both thresholds", "time_since_creation", engine.ConditionConfig{MinMinutes: intPtr(60), MinDays: intPtr(1)}, "not both"},
		{"last_note_stale without min_days", "last_note_stale", engine.ConditionConfig{Phase: "negotiation"}, "requires config.min_days"},
		{"sprint_deadline without phase", "sprint_deadline", engine.ConditionConfig{}, "concrete config.phase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			req.ConditionKind = tt.kind
			req.Config = tt.cfg
			assert.ErrorContains(t, ValidateCreateRule(req), tt.wantErr)
		})
	}

	t.Run("expired mode needs no warning window", func(t *testing.T) {
		req := validCreateRequest()
		req.ConditionKind = "date_expiring"
		req.Config = engine.ConditionConfig{Field: "permit_end", DaysUntil: intPtr(-1)}
		assert.NoError(t, ValidateCreateRule(req))
	})
}

func TestValidateCreateRule_Guard(t *testing.T) {
	t.Run("valid expression", func(t *testing.T) {
		req := validCreateRequest()
		req.Guard = `phase == "screening" && days_in_phase > 3`
		assert.NoError(t, ValidateCreateRule(req))
	})

	t.Run("non-boolean expression", func(t *testing.T) {
		req := validCreateRequest()
		req.Guard = `days_in_phase + 1`
		assert.ErrorContains(t, ValidateCreateRule(req), "invalid guard expression")
	})

	t.Run("syntax error", func(t *testing.T) {
		req := validCreateRequest()
		req.Guard = `phase == `
		assert.ErrorContains(t, ValidateCreateRule(req), "invalid guard expression")
	})
}

func TestValidateUpdateRule(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		assert.NoError(t, ValidateUpdateRule(UpdateRuleRequest{}))
	})

	t.Run("invalid record kind", func(t *testing.T) {
		req := UpdateRuleRequest{RecordKind: strPtr("customer")}
		assert.ErrorContains(t, ValidateUpdateRule(req), "invalid record_kind")
	})

	t.Run("unknown condition kind", func(t *testing.T) {
		req := UpdateRuleRequest{ConditionKind: strPtr("moon_phase")}
		assert.ErrorContains(t, ValidateUpdateRule(req), "unknown condition_kind")
	})

	t.Run("invalid urgency", func(t *testing.T) {
		req := UpdateRuleRequest{Urgency: strPtr("severe")}
		assert.ErrorContains(t, ValidateUpdateRule(req), "invalid urgency")
	})

	t.Run("invalid guard", func(t *testing.T) {
		req := UpdateRuleRequest{Guard: strPtr("days_in_phase +")}
		assert.ErrorContains(t, ValidateUpdateRule(req), "invalid guard expression")
	})

	t.Run("clearing a guard is valid", func(t *testing.T) {
		req := UpdateRuleRequest{Guard: strPtr("")}
		assert.NoError(t, ValidateUpdateRule(req))
	})
}

func TestValidateRuleShape(t *testing.T) {
	rule := &AttentionRule{
		ConditionKind: "task_stale",
		Config:        engine.ConditionConfig{DoneTaskID: "a", PendingTaskID: "b", Phase: "offer", MinDays: intPtr(2)},
	}
	require.NoError(t, ValidateRuleShape(rule))

	rule.Config.Phase = ""
	assert.ErrorContains(t, ValidateRuleShape(rule), "concrete config.phase")
}
