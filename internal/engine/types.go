package engine

// Urgency is the severity of a produced action item.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyInfo     Urgency = "info"
)

// Rank orders urgencies by severity, most severe first. Unknown values sort
// after info so a malformed rule can never outrank a valid one.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyWarning:
		return 1
	case UrgencyInfo:
		return 2
	default:
		return 3
	}
}

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyCritical, UrgencyWarning, UrgencyInfo:
		return true
	default:
		return false
	}
}

// RecordKind tags which pipeline a rule applies to.
type RecordKind string

const (
	KindApplicant RecordKind = "applicant"
	KindLead      RecordKind = "lead"
)

func (k RecordKind) Valid() bool {
	return k == KindApplicant || k == KindLead
}

// ConditionKind is the closed set of condition evaluators. Dispatch is an
// exhaustive switch in the pipeline; adding a kind here without an evaluator
// arm is a compile-time review item, not a runtime surprise.
type ConditionKind string

const (
	ConditionPhaseTime         ConditionKind = "phase_time"
	ConditionTaskIncomplete    ConditionKind = "task_incomplete"
	ConditionTaskStale         ConditionKind = "task_stale"
	ConditionDateExpiring      ConditionKind = "date_expiring"
	ConditionTimeSinceCreation ConditionKind = "time_since_creation"
	ConditionLastNoteStale     ConditionKind = "last_note_stale"
	ConditionSprintDeadline    ConditionKind = "sprint_deadline"
)

func (k ConditionKind) Known() bool {
	switch k {
	case ConditionPhaseTime, ConditionTaskIncomplete, ConditionTaskStale,
		ConditionDateExpiring, ConditionTimeSinceCreation,
		ConditionLastNoteStale, ConditionSprintDeadline:
		return true
	default:
		return false
	}
}

// PhaseAny is the sentinel phase meaning "any phase not in exclude_phases".
const PhaseAny = "any"

// ConditionConfig is the rule-specific configuration. It is persisted as a
// JSON column; which fields are meaningful depends on the condition kind.
// Pointer fields distinguish "absent" from zero where the distinction
// changes matching behavior.
type ConditionConfig struct {
	Phase         string   `json:"phase,omitempty"`
	ExcludePhases []string `json:"exclude_phases,omitempty"`

	MinDays    *int `json:"min_days,omitempty"`
	MinMinutes *int `json:"min_minutes,omitempty"`

	TaskID        string `json:"task_id,omitempty"`
	DoneTaskID    string `json:"done_task_id,omitempty"`
	PendingTaskID string `json:"pending_task_id,omitempty"`
	TaskNotDone   string `json:"task_not_done,omitempty"`

	Field            string `json:"field,omitempty"`
	DaysUntil        *int   `json:"days_until,omitempty"`
	DaysWarning      int    `json:"days_warning,omitempty"`
	DaysExcludeUnder int    `json:"days_exclude_under,omitempty"`

	WarningDay  *int `json:"warning_day,omitempty"`
	CriticalDay *int `json:"critical_day,omitempty"`
	ExpiredDay  *int `json:"expired_day,omitempty"`
}

// Escalation bumps a rule's base urgency once an elapsed-time threshold is
// crossed. It is a pure override: nothing checks that the new urgency is
// more severe than the base.
type Escalation struct {
	MinDays int     `json:"min_days"`
	Urgency Urgency `json:"urgency"`
}

// Rule is one externally authored attention rule. The engine treats rules as
// immutable snapshots for the duration of a call.
type Rule struct {
	ID             string
	Kind           RecordKind
	Condition      ConditionKind
	Config         ConditionConfig
	Urgency        Urgency
	Escalation     *Escalation
	Icon           string
	TitleTemplate  string
	DetailTemplate string
	ActionTemplate string
	Guard          string // optional guard expression, evaluated via Options.Guard
	Enabled        bool
	Priority       int
}

// Result is the verdict of one evaluator call. Context holds every value the
// rule's templates may reference for a matching case.
type Result struct {
	Matches bool
	Context map[string]any
}

func noMatch() Result {
	return Result{}
}

// ActionItem is one resolved, human-readable alert produced by a matching
// (entity, rule) pair. Items are ephemeral: the engine keeps no memory of
// what a previous run produced.
type ActionItem struct {
	EntityID string     `json:"entity_id"`
	Kind     RecordKind `json:"record_kind"`
	Name     string     `json:"name"`
	Urgency  Urgency    `json:"urgency"`
	Icon     string     `json:"icon"`
	Title    string     `json:"title"`
	Detail   string     `json:"detail"`
	Action   string     `json:"action"`
	RuleID   string     `json:"rule_id"`
}
