package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"beacon/internal/engine"
)

type Repository interface {
	GetActiveRules(ctx context.Context) ([]engine.Rule, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetActiveRules(ctx context.Context) ([]engine.Rule, error) {
	query := `
		SELECT id, record_kind, condition_kind, config, urgency, escalation,
		       icon, title_template, detail_template, action_template,
		       guard_expression, enabled, priority
		FROM attention_rules
		WHERE enabled = true
		ORDER BY priority DESC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []engine.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return rules, nil
}

func scanRule(rows *sql.Rows) (engine.Rule, error) {
	var (
		rule       engine.Rule
		kind       string
		condition  string
		urgency    string
		config     []byte
		escalation []byte
		guard      sql.NullString
	)
	if err := rows.Scan(
		&rule.ID, &kind, &condition, &config, &urgency, &escalation,
		&rule.Icon, &rule.TitleTemplate, &rule.DetailTemplate, &rule.ActionTemplate,
		&guard, &rule.Enabled, &rule.Priority,
	); err != nil {
		return engine.Rule{}, fmt.Errorf("failed to scan rule: %w", err)
	}

	rule.Kind = engine.RecordKind(kind)
	rule.Condition = engine.ConditionKind(condition)
	rule.Urgency = engine.Urgency(urgency)
	rule.Guard = guard.String

	if len(config) > 0 {
		if err := json.Unmarshal(config, &rule.Config); err != nil {
			return engine.Rule{}, fmt.Errorf("failed to decode config for rule %s: %w", rule.ID, err)
		}
	}
	if len(escalation) > 0 {
		var esc engine.Escalation
		if err := json.Unmarshal(escalation, &esc); err != nil {
			return engine.Rule{}, fmt.Errorf("failed to decode escalation for rule %s: %w", rule.ID, err)
		}
		if esc != (engine.Escalation{}) {
			rule.Escalation = &esc
		}
	}
	return rule, nil
}
