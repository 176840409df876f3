package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Repository loads entity snapshots for evaluation. Archived records are
// filtered in SQL; the engine filters them again as a belt-and-braces
// invariant but they should never reach it from here.
type Repository interface {
	ListApplicants(ctx context.Context) ([]*Applicant, error)
	ListLeads(ctx context.Context) ([]*Lead, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListApplicants resolves the effective phase in SQL: an explicit override
// wins over the computed phase, so the engine only ever sees the result.
func (r *PostgresRepository) ListApplicants(ctx context.Context) ([]*Applicant, error) {
	query := `
		SELECT id, first_name, last_name,
		       COALESCE(NULLIF(phase_override, ''), phase) AS phase,
		       phase_timestamps, tasks, notes, dates, created_at
		FROM applicants
		WHERE archived = false
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applicants: %w", err)
	}
	defer rows.Close()

	var applicants []*Applicant
	for rows.Next() {
		var (
			a          Applicant
			timestamps []byte
			tasks      []byte
			notes      []byte
			dates      []byte
		)
		if err := rows.Scan(
			&a.ID, &a.FirstName, &a.LastName, &a.Phase,
			&timestamps, &tasks, &notes, &dates, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		if err := decodeColumns(a.ID, timestamps, &a.PhaseTimestamps, tasks, &a.Tasks, notes, &a.Notes, dates, &a.Dates); err != nil {
			return nil, err
		}
		applicants = append(applicants, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return applicants, nil
}

func (r *PostgresRepository) ListLeads(ctx context.Context) ([]*Lead, error) {
	query := `
		SELECT id, company, contact, stage,
		       stage_entered, checklist, notes, dates, created_at
		FROM leads
		WHERE archived = false
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		var (
			l         Lead
			entered   []byte
			checklist []byte
			notes     []byte
			dates     []byte
		)
		if err := rows.Scan(
			&l.ID, &l.Company, &l.Contact, &l.Stage,
			&entered, &checklist, &notes, &dates, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		if err := decodeColumns(l.ID, entered, &l.StageEntered, checklist, &l.Checklist, notes, &l.Notes, dates, &l.Dates); err != nil {
			return nil, err
		}
		leads = append(leads, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return leads, nil
}

func decodeColumns(id string, rawTimestamps []byte, timestamps any, rawTasks []byte, tasks any, rawNotes []byte, notes any, rawDates []byte, dates any) error {
	pairs := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"timestamps", rawTimestamps, timestamps},
		{"tasks", rawTasks, tasks},
		{"notes", rawNotes, notes},
		{"dates", rawDates, dates},
	}
	for _, p := range pairs {
		if len(p.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(p.raw, p.dst); err != nil {
			return fmt.Errorf("failed to decode %s for record %s: %w", p.name, id, err)
		}
	}
	return nil
}
