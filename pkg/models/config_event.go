package models

import "time"

// ConfigUpdateEvent announces a rule change from the management service.
// Consumers use it as a trigger to refresh their rule snapshot; the event
// carries identifiers, not rule bodies.
type ConfigUpdateEvent struct {
	EventType string                 `json:"event_type"`
	RuleID    string                 `json:"rule_id,omitempty"`
	Action    string                 `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
	ChangedBy string                 `json:"changed_by,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeAttentionRuleUpdated = "attention_rule_updated"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionToggle = "toggle"
)
