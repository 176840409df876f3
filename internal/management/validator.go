package management

import (
	"fmt"

	"beacon/internal/engine"
	"beacon/pkg/cel"
)

// ValidateCreateRule rejects rules the engine would silently never match:
// unknown kinds, missing per-condition configuration, invalid urgencies.
// The engine itself stays permissive (bad config is a non-match at
// evaluation time); authoring is where mistakes get surfaced.
func ValidateCreateRule(req CreateRuleRequest) error {
	if !engine.RecordKind(req.RecordKind).Valid() {
		return fmt.Errorf("invalid record_kind: %s. Allowed: applicant, lead", req.RecordKind)
	}
	condition := engine.ConditionKind(req.ConditionKind)
	if !condition.Known() {
		return fmt.Errorf("unknown condition_kind: %s", req.ConditionKind)
	}
	if !engine.Urgency(req.Urgency).Valid() {
		return fmt.Errorf("invalid urgency: %s. Allowed: critical, warning, info", req.Urgency)
	}
	if req.Escalation != nil {
		if !req.Escalation.Urgency.Valid() {
			return fmt.Errorf("invalid escalation urgency: %s", req.Escalation.Urgency)
		}
		if req.Escalation.MinDays < 0 {
			return fmt.Errorf("escalation min_days must be non-negative")
		}
	}
	if err := validateConditionConfig(condition, req.Config); err != nil {
		return err
	}
	return validateGuard(req.Guard)
}

func ValidateUpdateRule(req UpdateRuleRequest) error {
	if req.RecordKind != nil && !engine.RecordKind(*req.RecordKind).Valid() {
		return fmt.Errorf("invalid record_kind: %s. Allowed: applicant, lead", *req.RecordKind)
	}
	if req.ConditionKind != nil && !engine.ConditionKind(*req.ConditionKind).Known() {
		return fmt.Errorf("unknown condition_kind: %s", *req.ConditionKind)
	}
	if req.Urgency != nil && !engine.Urgency(*req.Urgency).Valid() {
		return fmt.Errorf("invalid urgency: %s. Allowed: critical, warning, info", *req.Urgency)
	}
	if req.Escalation != nil && !req.Escalation.Urgency.Valid() {
		return fmt.Errorf("invalid escalation urgency: %s", req.Escalation.Urgency)
	}
	if req.Guard != nil {
		return validateGuard(*req.Guard)
	}
	return nil
}

// ValidateRuleShape re-checks the combined condition/config pair after an
// update merged partial fields, since kind and config can change
// independently.
func ValidateRuleShape(rule *AttentionRule) error {
	return validateConditionConfig(engine.ConditionKind(rule.ConditionKind), rule.Config)
}

func validateConditionConfig(kind engine.ConditionKind, cfg engine.ConditionConfig) error {
	switch kind {
	case engine.ConditionPhaseTime:
		if cfg.Phase == "" {
			return fmt.Errorf("phase_time requires config.phase (use %q for any phase)", engine.PhaseAny)
		}
		if cfg.MinDays == nil {
			return fmt.Errorf("phase_time requires config.min_days")
		}
	case engine.ConditionTaskIncomplete:
		if cfg.TaskID == "" {
			return fmt.Errorf("task_incomplete requires config.task_id")
		}
	case engine.ConditionTaskStale:
		if cfg.DoneTaskID == "" || cfg.PendingTaskID == "" {
			return fmt.Errorf("task_stale requires config.done_task_id and config.pending_task_id")
		}
		if cfg.Phase == "" || cfg.Phase == engine.PhaseAny {
			return fmt.Errorf("task_stale requires a concrete config.phase")
		}
		if cfg.MinDays == nil {
			return fmt.Errorf("task_stale requires config.min_days")
		}
	case engine.ConditionDateExpiring:
		if cfg.Field == "" {
			return fmt.Errorf("date_expiring requires config.field")
		}
		expiredMode := cfg.DaysUntil != nil && *cfg.DaysUntil < 0
		if !expiredMode && cfg.DaysWarning <= 0 {
			return fmt.Errorf("date_expiring requires config.days_warning unless config.days_until is negative")
		}
	case engine.ConditionTimeSinceCreation:
		if cfg.MinMinutes == nil && cfg.MinDays == nil {
			return fmt.Errorf("time_since_creation requires config.min_minutes or config.min_days")
		}
		if cfg.MinMinutes != nil && cfg.MinDays != nil {
			return fmt.Errorf("time_since_creation takes config.min_minutes or config.min_days, not both")
		}
	case engine.ConditionLastNoteStale:
		if cfg.MinDays == nil {
			return fmt.Errorf("last_note_stale requires config.min_days")
		}
	case engine.ConditionSprintDeadline:
		if cfg.Phase == "" || cfg.Phase == engine.PhaseAny {
			return fmt.Errorf("sprint_deadline requires a concrete config.phase")
		}
	}
	return nil
}

func validateGuard(expression string) error {
	if expression == "" {
		return nil
	}
	guard, err := cel.NewGuardEvaluator()
	if err != nil {
		return fmt.Errorf("failed to create guard evaluator: %w", err)
	}
	if err := guard.Validate(expression); err != nil {
		return fmt.Errorf("invalid guard expression: %w", err)
	}
	return nil
}
