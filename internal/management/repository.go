package management

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"beacon/internal/engine"
	pkgerrors "beacon/pkg/errors"
)

type Repository interface {
	CreateRule(ctx context.Context, rule *AttentionRule) error
	ListRules(ctx context.Context) ([]AttentionRule, error)
	GetRule(ctx context.Context, id string) (*AttentionRule, error)
	UpdateRule(ctx context.Context, rule *AttentionRule) error
	DeleteRule(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

const ruleColumns = `id, name, record_kind, condition_kind, config, urgency, escalation,
	icon, title_template, detail_template, action_template, guard_expression,
	enabled, priority, created_at, updated_at`

func (r *PostgresRepository) CreateRule(ctx context.Context, rule *AttentionRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	config, escalation, err := encodeRule(rule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO attention_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.RecordKind, rule.ConditionKind, config, rule.Urgency, escalation,
		rule.Icon, rule.TitleTemplate, rule.DetailTemplate, rule.ActionTemplate, rule.Guard,
		rule.Enabled, rule.Priority, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("rule with name '%s' already exists", rule.Name))
		}
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("rule with name '%s' already exists", rule.Name))
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListRules(ctx context.Context) ([]AttentionRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM attention_rules
		ORDER BY priority DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []AttentionRule
	for rows.Next() {
		rule, err := scanRuleRow(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return rules, nil
}

func (r *PostgresRepository) GetRule(ctx context.Context, id string) (*AttentionRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM attention_rules
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	rule, err := scanRuleRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

func (r *PostgresRepository) UpdateRule(ctx context.Context, rule *AttentionRule) error {
	rule.UpdatedAt = time.Now()

	config, escalation, err := encodeRule(rule)
	if err != nil {
		return err
	}

	query := `
		UPDATE attention_rules
		SET name = $1, record_kind = $2, condition_kind = $3, config = $4,
		    urgency = $5, escalation = $6, icon = $7, title_template = $8,
		    detail_template = $9, action_template = $10, guard_expression = $11,
		    enabled = $12, priority = $13, updated_at = $14
		WHERE id = $15
	`

	res, err := r.db.ExecContext(ctx, query,
		rule.Name, rule.RecordKind, rule.ConditionKind, config,
		rule.Urgency, escalation, rule.Icon, rule.TitleTemplate,
		rule.DetailTemplate, rule.ActionTemplate, rule.Guard,
		rule.Enabled, rule.Priority, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("id", rule.ID)
	}

	return nil
}

func (r *PostgresRepository) DeleteRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attention_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	return nil
}

func encodeRule(rule *AttentionRule) (config []byte, escalation []byte, err error) {
	config, err = json.Marshal(rule.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if rule.Escalation != nil {
		escalation, err = json.Marshal(rule.Escalation)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode escalation: %w", err)
		}
	}
	return config, escalation, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRuleRow(row rowScanner) (*AttentionRule, error) {
	var (
		rule       AttentionRule
		config     []byte
		escalation []byte
		guard      sql.NullString
	)
	if err := row.Scan(
		&rule.ID, &rule.Name, &rule.RecordKind, &rule.ConditionKind, &config, &rule.Urgency, &escalation,
		&rule.Icon, &rule.TitleTemplate, &rule.DetailTemplate, &rule.ActionTemplate, &guard,
		&rule.Enabled, &rule.Priority, &rule.CreatedAt, &rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rule.Guard = guard.String

	if len(config) > 0 {
		if err := json.Unmarshal(config, &rule.Config); err != nil {
			return nil, fmt.Errorf("failed to decode config for rule %s: %w", rule.ID, err)
		}
	}
	if len(escalation) > 0 {
		var esc engine.Escalation
		if err := json.Unmarshal(escalation, &esc); err != nil {
			return nil, fmt.Errorf("failed to decode escalation for rule %s: %w", rule.ID, err)
		}
		if esc != (engine.Escalation{}) {
			rule.Escalation = &esc
		}
	}
	return &rule, nil
}
