package management

import (
	"time"

	"beacon/internal/engine"
)

// AttentionRule is the stored form of one rule, as authored through the
// management API. The attention service consumes the same row via the
// read-side repository in internal/rules.
type AttentionRule struct {
	ID             string                 `json:"id" db:"id"`
	Name           string                 `json:"name" db:"name"`
	RecordKind     string                 `json:"record_kind" db:"record_kind"`
	ConditionKind  string                 `json:"condition_kind" db:"condition_kind"`
	Config         engine.ConditionConfig `json:"config" db:"config"`
	Urgency        string                 `json:"urgency" db:"urgency"`
	Escalation     *engine.Escalation     `json:"escalation,omitempty" db:"escalation"`
	Icon           string                 `json:"icon" db:"icon"`
	TitleTemplate  string                 `json:"title_template" db:"title_template"`
	DetailTemplate string                 `json:"detail_template" db:"detail_template"`
	ActionTemplate string                 `json:"action_template" db:"action_template"`
	Guard          string                 `json:"guard_expression,omitempty" db:"guard_expression"`
	Enabled        bool                   `json:"enabled" db:"enabled"`
	Priority       int                    `json:"priority" db:"priority"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" db:"updated_at"`
}

type CreateRuleRequest struct {
	Name           string                 `json:"name" binding:"required"`
	RecordKind     string                 `json:"record_kind" binding:"required"`
	ConditionKind  string                 `json:"condition_kind" binding:"required"`
	Config         engine.ConditionConfig `json:"config"`
	Urgency        string                 `json:"urgency" binding:"required"`
	Escalation     *engine.Escalation     `json:"escalation"`
	Icon           string                 `json:"icon"`
	TitleTemplate  string                 `json:"title_template" binding:"required"`
	DetailTemplate string                 `json:"detail_template"`
	ActionTemplate string                 `json:"action_template"`
	Guard          string                 `json:"guard_expression"`
	Enabled        *bool                  `json:"enabled"`
	Priority       int                    `json:"priority"`
}

type UpdateRuleRequest struct {
	Name           *string                 `json:"name"`
	RecordKind     *string                 `json:"record_kind"`
	ConditionKind  *string                 `json:"condition_kind"`
	Config         *engine.ConditionConfig `json:"config"`
	Urgency        *string                 `json:"urgency"`
	Escalation     *engine.Escalation      `json:"escalation"`
	Icon           *string                 `json:"icon"`
	TitleTemplate  *string                 `json:"title_template"`
	DetailTemplate *string                 `json:"detail_template"`
	ActionTemplate *string                 `json:"action_template"`
	Guard          *string                 `json:"guard_expression"`
	Enabled        *bool                   `json:"enabled"`
	Priority       *int                    `json:"priority"`
}
