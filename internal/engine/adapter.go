package engine

import "time"

// Adapter normalizes one record kind into the vocabulary the evaluators
// need. Implementations must never panic: every operation returns a
// deterministic default when the underlying data is missing. Adding a new
// record kind means supplying a new Adapter; the evaluators stay untouched.
type Adapter[E any] interface {
	// Kind tags which rules apply to records served by this adapter.
	Kind() RecordKind

	ID(e E) string
	Name(e E) string

	// Phase is the resolved current phase. Override-vs-computed resolution
	// happens upstream, in the loading layer; the engine only reads the
	// result.
	Phase(e E) string

	// DaysInPhase is floor(elapsed/24h) since the current phase was
	// entered, or 0 when no entry timestamp is recorded for it.
	DaysInPhase(e E, now time.Time) int

	DaysSinceCreation(e E, now time.Time) int
	MinutesSinceCreation(e E, now time.Time) int

	// IsTaskDone normalizes both task representations; absent, empty, or
	// false-ish values are not-done.
	IsTaskDone(e E, taskID string) bool

	// DateField returns the raw value of a named date attribute.
	DateField(e E, field string) (time.Time, bool)

	// PhaseTimestamp returns the raw stored entry timestamp for a named
	// phase, which is not necessarily the current one.
	PhaseTimestamp(e E, phase string) (time.Time, bool)

	// LastNoteDate is the maximum timestamp across notes.
	LastNoteDate(e E) (time.Time, bool)

	IsArchived(e E) bool

	// IsTerminalPhase reports whether the record is past the point where
	// alerting makes sense (a lead won or lost). Always false for
	// applicants.
	IsTerminalPhase(e E) bool
}

// DaysBetween is floor((now − since) / 24h). Callers that need "missing
// timestamp means zero" handle the missing case themselves.
func DaysBetween(since, now time.Time) int {
	d := now.Sub(since)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// DaysUntil is ceil((date − now) / 24h): two hours from now already counts
// as one day away, and a deadline earlier today is zero, not yet overdue.
func DaysUntil(now, date time.Time) int {
	d := date.Sub(now)
	days := int(d / (24 * time.Hour))
	if d > 0 && d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// MinutesBetween is floor((now − since) / 1m).
func MinutesBetween(since, now time.Time) int {
	d := now.Sub(since)
	minutes := int(d / time.Minute)
	if d < 0 && d%time.Minute != 0 {
		minutes--
	}
	return minutes
}
