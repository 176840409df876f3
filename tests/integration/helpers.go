package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/internal/management"
	"beacon/internal/records"
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func intPtr(v int) *int { return &v }

func createTestRule(name string, kind engine.RecordKind, urgency engine.Urgency, minDays, priority int) *management.AttentionRule {
	return &management.AttentionRule{
		Name:          name,
		RecordKind:    string(kind),
		ConditionKind: string(engine.ConditionPhaseTime),
		Config:        engine.ConditionConfig{Phase: engine.PhaseAny, MinDays: intPtr(minDays)},
		Urgency:       string(urgency),
		Icon:          "hourglass",
		TitleTemplate: "{{name}} stuck for {{days_in_phase}} days",
		Enabled:       true,
		Priority:      priority,
	}
}

type applicantRow struct {
	id              string
	firstName       string
	lastName        string
	phase           string
	phaseOverride   string
	phaseTimestamps map[string]time.Time
	tasks           map[string]any
	notes           []records.Note
	dates           map[string]time.Time
	archived        bool
	createdAt       time.Time
}

func insertApplicant(t *testing.T, db *sql.DB, row applicantRow) string {
	t.Helper()

	if row.id == "" {
		row.id = uuid.New().String()
	}
	if row.createdAt.IsZero() {
		row.createdAt = time.Now()
	}

	_, err := db.ExecContext(context.Background(), `
		INSERT INTO applicants (id, first_name, last_name, phase, phase_override,
		                        phase_timestamps, tasks, notes, dates, archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		row.id, row.firstName, row.lastName, row.phase, row.phaseOverride,
		mustJSON(t, orEmptyMap(row.phaseTimestamps)), mustJSON(t, orEmptyAny(row.tasks)),
		mustJSON(t, orEmptyNotes(row.notes)), mustJSON(t, orEmptyMap(row.dates)),
		row.archived, row.createdAt,
	)
	if err != nil {
		t.Fatalf("failed to insert applicant: %v", err)
	}
	return row.id
}

type leadRow struct {
	id           string
	company      string
	contact      string
	stage        string
	stageEntered map[string]time.Time
	checklist    map[string]any
	notes        []records.Note
	dates        map[string]time.Time
	archived     bool
	createdAt    time.Time
}

func insertLead(t *testing.T, db *sql.DB, row leadRow) string {
	t.Helper()

	if row.id == "" {
		row.id = uuid.New().String()
	}
	if row.createdAt.IsZero() {
		row.createdAt = time.Now()
	}

	_, err := db.ExecContext(context.Background(), `
		INSERT INTO leads (id, company, contact, stage, stage_entered,
		                   checklist, notes, dates, archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		row.id, row.company, row.contact, row.stage,
		mustJSON(t, orEmptyMap(row.stageEntered)), mustJSON(t, orEmptyAny(row.checklist)),
		mustJSON(t, orEmptyNotes(row.notes)), mustJSON(t, orEmptyMap(row.dates)),
		row.archived, row.createdAt,
	)
	if err != nil {
		t.Fatalf("failed to insert lead: %v", err)
	}
	return row.id
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal test value: %v", err)
	}
	return data
}

func orEmptyMap(m map[string]time.Time) map[string]time.Time {
	if m == nil {
		return map[string]time.Time{}
	}
	return m
}

func orEmptyAny(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptyNotes(notes []records.Note) []records.Note {
	if notes == nil {
		return []records.Note{}
	}
	return notes
}
