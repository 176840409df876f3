package engine

import "time"

// stubRecord is a minimal in-memory record for exercising the evaluators
// without pulling in the real repository models.
type stubRecord struct {
	id       string
	name     string
	phase    string
	created  time.Time
	phaseAt  map[string]time.Time
	tasks    map[string]bool
	dates    map[string]time.Time
	lastNote *time.Time
	archived bool
	terminal bool
}

// stubAdapter adapts stubRecord. When panicOn is set, asking about that task
// panics, which lets the pipeline tests exercise panic containment.
type stubAdapter struct {
	kind    RecordKind
	panicOn string
}

func (a stubAdapter) Kind() RecordKind { return a.kind }
func (stubAdapter) ID(r stubRecord) string { return r.id }
func (stubAdapter) Name(r stubRecord) string { return r.name }
func (stubAdapter) Phase(r stubRecord) string { return r.phase }
func (stubAdapter) IsArchived(r stubRecord) bool { return r.archived }
func (stubAdapter) IsTerminalPhase(r stubRecord) bool { return r.terminal }

func (stubAdapter) DaysInPhase(r stubRecord, now time.Time) int {
	entered, ok := r.phaseAt[r.phase]
	if !ok {
		return 0
	}
	return DaysBetween(entered, now)
}

func (stubAdapter) DaysSinceCreation(r stubRecord, now time.Time) int {
	return DaysBetween(r.created, now)
}

func (stubAdapter) MinutesSinceCreation(r stubRecord, now time.Time) int {
	return MinutesBetween(r.created, now)
}

func (a stubAdapter) IsTaskDone(r stubRecord, taskID string) bool {
	if a.panicOn != "" && taskID == a.panicOn {
		panic("corrupt task state")
	}
	return r.tasks[taskID]
}

func (stubAdapter) DateField(r stubRecord, field string) (time.Time, bool) {
	d, ok := r.dates[field]
	return d, ok
}

func (stubAdapter) PhaseTimestamp(r stubRecord, phase string) (time.Time, bool) {
	t, ok := r.phaseAt[phase]
	return t, ok
}

func (stubAdapter) LastNoteDate(r stubRecord) (time.Time, bool) {
	if r.lastNote == nil {
		return time.Time{}, false
	}
	return *r.lastNote, true
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
