package records

import (
	"bytes"
	"encoding/json"
	"time"
)

// Note is one timeline entry on a record. Only the timestamp matters to the
// attention engine; the body is carried for the dashboard.
type Note struct {
	Body      string    `json:"body,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskState normalizes the two task representations found in stored
// records: a plain true/false, or an enriched object carrying the completion
// timestamp and actor. Both collapse to one done/not-done answer.
type TaskState struct {
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy string     `json:"completed_by,omitempty"`
}

// IsDone treats an enriched entry with a completion timestamp as done even
// when the done flag was never set. Anything absent or false-ish is not.
func (t TaskState) IsDone() bool {
	return t.Done || t.CompletedAt != nil
}

func (t *TaskState) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = TaskState{}
		return nil
	}
	if trimmed[0] != '{' {
		var done bool
		if err := json.Unmarshal(trimmed, &done); err != nil {
			// Unknown scalar shape reads as not-done rather than failing
			// the whole record load.
			*t = TaskState{}
			return nil
		}
		*t = TaskState{Done: done}
		return nil
	}

	type enriched TaskState
	var e enriched
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return err
	}
	*t = TaskState(e)
	return nil
}

// Applicant is a job-pipeline record. Phase is the resolved current phase;
// override-vs-computed resolution happens at load time, before the engine
// ever sees the record.
type Applicant struct {
	ID              string                `json:"id"`
	FirstName       string                `json:"first_name"`
	LastName        string                `json:"last_name"`
	Phase           string                `json:"phase"`
	PhaseTimestamps map[string]time.Time  `json:"phase_timestamps"`
	Tasks           map[string]TaskState  `json:"tasks"`
	Notes           []Note                `json:"notes"`
	Dates           map[string]time.Time  `json:"dates"`
	CreatedAt       time.Time             `json:"created_at"`
	Archived        bool                  `json:"archived"`
}

// Lead is a sales-pipeline record with its own field vocabulary: stages
// instead of phases, a checklist instead of tasks.
type Lead struct {
	ID           string               `json:"id"`
	Company      string               `json:"company"`
	Contact      string               `json:"contact"`
	Stage        string               `json:"stage"`
	StageEntered map[string]time.Time `json:"stage_entered"`
	Checklist    map[string]TaskState `json:"checklist"`
	Notes        []Note               `json:"notes"`
	Dates        map[string]time.Time `json:"dates"`
	CreatedAt    time.Time            `json:"created_at"`
	Archived     bool                 `json:"archived"`
}

// Terminal lead stages. A won or lost lead never alerts again.
const (
	StageWon  = "won"
	StageLost = "lost"
)

func lastNoteDate(notes []Note) (time.Time, bool) {
	var latest time.Time
	for _, note := range notes {
		if note.CreatedAt.After(latest) {
			latest = note.CreatedAt
		}
	}
	return latest, !latest.IsZero()
}
