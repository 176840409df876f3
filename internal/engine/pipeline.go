package engine

import (
	"sort"
	"time"

	"beacon/internal/logger"
	"beacon/pkg/errors"
)

// GuardFunc evaluates an optional rule guard expression against a small map
// of entity facts. The engine has no opinion on the expression language; the
// caller injects an implementation (pkg/cel provides one).
type GuardFunc func(expression string, facts map[string]any) (bool, error)

// Options tune one Evaluate call. The zero value is usable: no urgency
// filter, no limit, wall-clock now, no guard support, no-op logging.
type Options struct {
	// Urgency keeps only items at exactly this level when set.
	Urgency Urgency
	// Limit truncates the sorted output when positive.
	Limit int
	// Now fixes the evaluation instant; zero means time.Now(). Identical
	// inputs with the same Now yield structurally identical output.
	Now time.Time
	// Guard evaluates rule guard expressions. Rules carrying a guard are
	// skipped when no Guard is supplied.
	Guard  GuardFunc
	Logger logger.Logger
}

// Evaluate scans every (entity, rule) pair and returns the matching action
// items, stable-sorted by urgency severity then display name. It never
// returns an error: one malformed rule is contained, logged, and treated as
// a non-match while the rest of the batch proceeds. The engine performs no
// I/O; both inputs are treated as immutable snapshots for the call.
func Evaluate[E any](entities []E, rules []Rule, adapter Adapter[E], opts Options) []ActionItem {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger()
	}

	applicable := applicableRules(rules, adapter.Kind())

	var items []ActionItem
	for _, entity := range entities {
		if adapter.IsArchived(entity) {
			continue
		}
		if adapter.IsTerminalPhase(entity) {
			continue
		}
		for _, rule := range applicable {
			item, ok := evaluateRule(entity, rule, adapter, now, opts, log)
			if ok {
				items = append(items, item)
			}
		}
	}

	Sort(items)
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items
}

// applicableRules keeps enabled rules of the adapter's record kind with a
// known condition kind, ordered by descending priority. An unrecognized
// condition kind silently drops the rule; the rest of the batch still runs.
func applicableRules(rules []Rule, kind RecordKind) []Rule {
	applicable := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Enabled || rule.Kind != kind || !rule.Condition.Known() {
			continue
		}
		applicable = append(applicable, rule)
	}
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority > applicable[j].Priority
	})
	return applicable
}

func evaluateRule[E any](entity E, rule Rule, adapter Adapter[E], now time.Time, opts Options, log logger.Logger) (item ActionItem, ok bool) {
	result := safeDispatch(entity, rule, adapter, now, log)
	if !result.Matches {
		return ActionItem{}, false
	}

	if rule.Guard != "" {
		if opts.Guard == nil {
			return ActionItem{}, false
		}
		passed, err := opts.Guard(rule.Guard, guardFacts(entity, adapter, now))
		if err != nil {
			log.Errorw("Rule guard evaluation failed",
				"rule_id", rule.ID,
				"error", err,
			)
			return ActionItem{}, false
		}
		if !passed {
			return ActionItem{}, false
		}
	}

	urgency := resolveUrgency(entity, rule, adapter, now)
	if opts.Urgency != "" && urgency != opts.Urgency {
		return ActionItem{}, false
	}

	name := adapter.Name(entity)
	context := result.Context
	if context == nil {
		context = make(map[string]any, 1)
	}
	context["name"] = name

	return ActionItem{
		EntityID: adapter.ID(entity),
		Kind:     adapter.Kind(),
		Name:     name,
		Urgency:  urgency,
		Icon:     rule.Icon,
		Title:    ResolveTemplate(rule.TitleTemplate, context),
		Detail:   ResolveTemplate(rule.DetailTemplate, context),
		Action:   ResolveTemplate(rule.ActionTemplate, context),
		RuleID:   rule.ID,
	}, true
}

// safeDispatch routes to the evaluator for the rule's condition kind,
// containing any panic at the per-rule boundary so one malformed
// configuration cannot abort the batch.
func safeDispatch[E any](entity E, rule Rule, adapter Adapter[E], now time.Time, log logger.Logger) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Evaluator panic contained",
				"rule_id", rule.ID,
				"condition", string(rule.Condition),
				"error", errors.RecoverPanic(r),
			)
			result = noMatch()
		}
	}()

	switch rule.Condition {
	case ConditionPhaseTime:
		return evalPhaseTime(entity, rule.Config, adapter, now)
	case ConditionTaskIncomplete:
		return evalTaskIncomplete(entity, rule.Config, adapter, now)
	case ConditionTaskStale:
		return evalTaskStale(entity, rule.Config, adapter, now)
	case ConditionDateExpiring:
		return evalDateExpiring(entity, rule.Config, adapter, now)
	case ConditionTimeSinceCreation:
		return evalTimeSinceCreation(entity, rule.Config, adapter, now)
	case ConditionLastNoteStale:
		return evalLastNoteStale(entity, rule.Config, adapter, now)
	case ConditionSprintDeadline:
		return evalSprintDeadline(entity, rule.Config, adapter, now)
	default:
		return noMatch()
	}
}

func guardFacts[E any](entity E, adapter Adapter[E], now time.Time) map[string]any {
	return map[string]any{
		"id":                  adapter.ID(entity),
		"name":                adapter.Name(entity),
		"kind":                string(adapter.Kind()),
		"phase":               adapter.Phase(entity),
		"days_in_phase":       adapter.DaysInPhase(entity, now),
		"days_since_creation": adapter.DaysSinceCreation(entity, now),
	}
}

// Sort orders items by urgency severity (critical first), then display
// name. The sort is stable so equal items keep their evaluation order,
// which makes output deterministic for identical inputs.
func Sort(items []ActionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Urgency.Rank() != items[j].Urgency.Rank() {
			return items[i].Urgency.Rank() < items[j].Urgency.Rank()
		}
		return items[i].Name < items[j].Name
	})
}
