package engine

import "time"

// The evaluators below are pure functions from (entity, config, adapter) to
// a Result. Missing preconditions — no phase timestamp, no date value, no
// configured threshold — are a non-match, never an error: the engine prefers
// silence over false alarms when the data is insufficient.

// phaseFilterPasses applies the shared phase filter. An empty phase or the
// PhaseAny sentinel accepts any phase not listed in exclude_phases.
func phaseFilterPasses(cfg ConditionConfig, phase string) bool {
	if cfg.Phase == "" || cfg.Phase == PhaseAny {
		for _, excluded := range cfg.ExcludePhases {
			if phase == excluded {
				return false
			}
		}
		return true
	}
	return phase == cfg.Phase
}

// evalPhaseTime matches when the phase filter passes and the entity has sat
// in its current phase for at least min_days (boundary inclusive).
// Context: days_in_phase, phase_name.
func evalPhaseTime[E any](e E, cfg ConditionConfig, a Adapter[E], now time.Time) Result {
	if cfg.MinDays == nil {
		return noMatch()
	}
	phase := a.Phase(e)
	if !phaseFilterPasses(cfg, phase) {
		return noMatch()
	}
	days := a.DaysInPhase(e, now)
	if days < *cfg.MinDays {
		return noMatch()
	}
	return Result{Matches: true, Context: map[string]any{
		"days_in_phase": days,
		"phase_name":    phase,
	}}
}

// evalTaskIncomplete matches when the task is not done and the relevant
// elapsed-time measure meets min_days. Phase-scoped checks measure
// stagnation within a stage (days_in_phase); pipeline-wide checks measure
// total neglect (days_since_creation).
// Context: task_id, phase_name, days_waiting.
func evalTaskIncomplete[E any](e E, cfg ConditionConfig, a Adapter[E], now time.Time) Result {
	if cfg.TaskID == "" {
		return noMatch()
	}
	phase := a.Phase(e)
	phaseScoped := cfg.Phase != "" && cfg.Phase != PhaseAny
	if phaseScoped && phase != cfg.Phase {
		return noMatch()
	}
	if a.IsTaskDone(e, cfg.TaskID) {
		return noMatch()
	}

	var waited int
	if phaseScoped {
		waited = a.DaysInPhase(e, now)
	} else {
		waited = a.DaysSinceCreation(e, now)
	}

	minDays := 0
	if cfg.MinDays != nil {
		minDays = *cfg.MinDays
	}
	if waited < minDays {
		return noMatch()
	}
	return Result{Matches: true, Context: map[string]any{
		"task_id":      cfg.TaskID,
		"phase_name":   phase,
		"days_waiting": waited,
	}}
}

// evalTaskStale matches when the done_task is complete, the pending_task is
// not, and at least min_days have passed since the entity entered the named
// phase. No stored timestamp for that phase means no match: never alarm
// without a measurable start.
// Context: days_waiting, phase_name, done_task_id, pending_task_id.
func evalTaskStale[E any](e E, cfg ConditionConfig, a Adapter[E], now time.Time) Result {
	if cfg.DoneTaskID == "" || cfg.PendingTaskID == "" || cfg.Phase == "" || cfg.MinDays == nil {
		return noMatch()
	}
	if !a.IsTaskDone(e, cfg.DoneTaskID) {
		return noMatch()
	}
	if a.IsTaskDone(e, cfg.PendingTaskID) {
		return noMatch()
	}
	entered, ok := a.PhaseTimestamp(e, cfg.Phase)
	if !ok {
		return noMatch()
	}
	days := DaysBetween(entered, now)
	if days < *cfg.MinDays {
		return noMatch()
	}
	return Result{Matches: true, Context: map[string]any{
		"days_waiting":    days,
		"phase_name":      cfg.Phase,
		"done_task_id":    cfg.DoneTaskID,
		"pending_task_id": cfg.PendingTaskID,
	}}
}

// evalDateExpiring has two modes. A negative days_until selects "already
// expired": match when the date is past, with context reporting the absolute
// overdue day count. The default "expiring soon" mode matches when
// 0 <= days_until <= days_warning, unless days_exclude_under carves out the
// near window (so a tighter, more urgent rule is not duplicated by a looser
// one). No date value means no match.
// Context: days_until_expiry, field, expiry_date.
func evalDateExpiring[E any](e E, cfg ConditionConfig, a Adapter[E], now time.Time) Result {
	if cfg.Field == "" {
		return noMatch()
	}
	date, ok := a.DateField(e, cfg.Field)
	if !ok {
		return noMatch()
	}
	until := DaysUntil(now, date)

	expiredMode := cfg.DaysUntil != nil && *cfg.DaysUntil < 0
	if expiredMode {
		if until >= 0 {
			return noMatch()
		}
		return Result{Matches: true, Context: map[string]any{
			"days_until_expiry": -until,
			"field":             cfg.Field,
			"expiry_date":       date.Format("2006-01-02"),
		}}
	}

	if until < 0 || until > cfg.DaysWarning {
		return noMatch()
	}
	if cfg.DaysExcludeUnder > 0 && until <= cfg.DaysExcludeUnder {
		return noMatch()
	}
	return Result{Matches: true, Context: map[string]any{
		"days_until_expiry": until,
		"field":             cfg.Field,
		"expiry_date":       date.Format("2006-01-02"),
	}}
}

// evalTimeSinceCreation matches once the configured elapsed-time threshold
// is crossed. Exactly one of min_minutes/min_days is meaningful per rule;
// neither configured means the rule never matches. An optional phase filter
// and an optional already-done task suppress the match.
// Context: days_since_creation, minutes_since_creation, phase_name.
func evalTimeSinceCreation[E any](e E, cfg ConditionConfig, a Adapter[E], now time.Time) Result {
	phase := a.Phase(e)
	if !phaseFilterPasses(cfg, phase) {
		return noMatch()
	}
	if cfg.TaskNotDone != "" && a.IsTaskDone(e, cfg.TaskNotDone) {
		return noMatch()
	}

	switch {
	case cfg.MinMinutes != nil:
		if a.MinutesSinceCreation(e, now) < *cfg.MinMinutes {
			return noMatch()
		}
	case cfg.MinDays != nil:
		if a.DaysSinceCreation(e, now) < *cfg.MinDays {
			return noMatch()
		}
	default:
		return noMatch()
	}

	return Result{Matches: true, Context: map[string]any{
		"days_since_creation":    a.DaysSinceCreation(e, now),
		"minutes_since_creation": a.MinutesSinceCreation(e, now),
		"phase_name":             phase,
	}}
}

// evalLastNoteStale matches when days since the most recent note — or, for
// entities with no notes at all, days since creation — meet min_days.
// Context: days_since_note, phase_name.
func evalLastNoteStale[E any](e E, cfg ConditionConfig, a Adapter[E], now time.Time) Result {
	if cfg.MinDays == nil {
		return noMatch()
	}
	phase := a.Phase(e)
	if !phaseFilterPasses(cfg, phase) {
		return noMatch()
	}

	var stale int
	if last, ok := a.LastNoteDate(e); ok {
		stale = DaysBetween(last, now)
	} else {
		stale = a.DaysSinceCreation(e, now)
	}
	if stale < *cfg.MinDays {
		return noMatch()
	}
	return Result{Matches: true, Context: map[string]any{
		"days_since_note": stale,
		"phase_name":      phase,
	}}
}

const (
	defaultSprintWarningDay = 3
	defaultSprintExpiredDay = 7
)

// evalSprintDeadline tracks a phase-relative countdown. It requires the
// entity to be in the configured phase with a recorded entry timestamp;
// sprint_day is days in that phase and the rule matches once it reaches
// warning_day. sprint_remaining counts down to expired_day, clamped at zero
// so the countdown never goes negative.
// Context: sprint_day, sprint_remaining, phase_name, and sprint_critical
// when a critical_day is configured.
func evalSprintDeadline[E any](e E, cfg ConditionConfig, a Adapter[E], now time.Time) Result {
	if cfg.Phase == "" || a.Phase(e) != cfg.Phase {
		return noMatch()
	}
	if _, ok := a.PhaseTimestamp(e, cfg.Phase); !ok {
		return noMatch()
	}

	warningDay := defaultSprintWarningDay
	if cfg.WarningDay != nil {
		warningDay = *cfg.WarningDay
	}
	expiredDay := defaultSprintExpiredDay
	if cfg.ExpiredDay != nil {
		expiredDay = *cfg.ExpiredDay
	}

	sprintDay := a.DaysInPhase(e, now)
	if sprintDay < warningDay {
		return noMatch()
	}

	remaining := expiredDay - sprintDay
	if remaining < 0 {
		remaining = 0
	}

	ctx := map[string]any{
		"sprint_day":       sprintDay,
		"sprint_remaining": remaining,
		"phase_name":       cfg.Phase,
	}
	if cfg.CriticalDay != nil {
		ctx["sprint_critical"] = sprintDay >= *cfg.CriticalDay
	}
	return Result{Matches: true, Context: ctx}
}
