package records

import (
	"strings"
	"time"

	"beacon/internal/engine"
)

// ApplicantAdapter exposes applicants to the attention engine. All methods
// return deterministic defaults on missing data; none of them can panic on
// a zero-value record.
type ApplicantAdapter struct{}

func (ApplicantAdapter) Kind() engine.RecordKind { return engine.KindApplicant }

func (ApplicantAdapter) ID(a *Applicant) string { return a.ID }

func (ApplicantAdapter) Name(a *Applicant) string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (ApplicantAdapter) Phase(a *Applicant) string { return a.Phase }

func (ApplicantAdapter) DaysInPhase(a *Applicant, now time.Time) int {
	entered, ok := a.PhaseTimestamps[a.Phase]
	if !ok {
		return 0
	}
	return engine.DaysBetween(entered, now)
}

func (ApplicantAdapter) DaysSinceCreation(a *Applicant, now time.Time) int {
	if a.CreatedAt.IsZero() {
		return 0
	}
	return engine.DaysBetween(a.CreatedAt, now)
}

func (ApplicantAdapter) MinutesSinceCreation(a *Applicant, now time.Time) int {
	if a.CreatedAt.IsZero() {
		return 0
	}
	return engine.MinutesBetween(a.CreatedAt, now)
}

func (ApplicantAdapter) IsTaskDone(a *Applicant, taskID string) bool {
	return a.Tasks[taskID].IsDone()
}

func (ApplicantAdapter) DateField(a *Applicant, field string) (time.Time, bool) {
	date, ok := a.Dates[field]
	return date, ok && !date.IsZero()
}

func (ApplicantAdapter) PhaseTimestamp(a *Applicant, phase string) (time.Time, bool) {
	ts, ok := a.PhaseTimestamps[phase]
	return ts, ok && !ts.IsZero()
}

func (ApplicantAdapter) LastNoteDate(a *Applicant) (time.Time, bool) {
	return lastNoteDate(a.Notes)
}

func (ApplicantAdapter) IsArchived(a *Applicant) bool { return a.Archived }

// Applicant pipelines have no terminal phase; hired candidates are archived
// instead.
func (ApplicantAdapter) IsTerminalPhase(*Applicant) bool { return false }

// LeadAdapter exposes sales leads to the attention engine, mapping the lead
// vocabulary (stage, checklist) onto the engine's phase/task primitives.
type LeadAdapter struct{}

func (LeadAdapter) Kind() engine.RecordKind { return engine.KindLead }

func (LeadAdapter) ID(l *Lead) string { return l.ID }

func (LeadAdapter) Name(l *Lead) string {
	if l.Company != "" {
		return l.Company
	}
	return l.Contact
}

func (LeadAdapter) Phase(l *Lead) string { return l.Stage }

func (LeadAdapter) DaysInPhase(l *Lead, now time.Time) int {
	entered, ok := l.StageEntered[l.Stage]
	if !ok {
		return 0
	}
	return engine.DaysBetween(entered, now)
}

func (LeadAdapter) DaysSinceCreation(l *Lead, now time.Time) int {
	if l.CreatedAt.IsZero() {
		return 0
	}
	return engine.DaysBetween(l.CreatedAt, now)
}

func (LeadAdapter) MinutesSinceCreation(l *Lead, now time.Time) int {
	if l.CreatedAt.IsZero() {
		return 0
	}
	return engine.MinutesBetween(l.CreatedAt, now)
}

func (LeadAdapter) IsTaskDone(l *Lead, taskID string) bool {
	return l.Checklist[taskID].IsDone()
}

func (LeadAdapter) DateField(l *Lead, field string) (time.Time, bool) {
	date, ok := l.Dates[field]
	return date, ok && !date.IsZero()
}

func (LeadAdapter) PhaseTimestamp(l *Lead, stage string) (time.Time, bool) {
	ts, ok := l.StageEntered[stage]
	return ts, ok && !ts.IsZero()
}

func (LeadAdapter) LastNoteDate(l *Lead) (time.Time, bool) {
	return lastNoteDate(l.Notes)
}

func (LeadAdapter) IsArchived(l *Lead) bool { return l.Archived }

func (LeadAdapter) IsTerminalPhase(l *Lead) bool {
	return l.Stage == StageWon || l.Stage == StageLost
}
