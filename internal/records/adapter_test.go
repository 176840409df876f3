package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adapterNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestApplicantAdapter(t *testing.T) {
	adapter := ApplicantAdapter{}
	completed := adapterNow.AddDate(0, 0, -2)
	applicant := &Applicant{
		ID:        "ap-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phase:     "interview",
		PhaseTimestamps: map[string]time.Time{
			"screening": adapterNow.AddDate(0, 0, -20),
			"interview": adapterNow.AddDate(0, 0, -6),
		},
		Tasks: map[string]TaskState{
			"cv_reviewed": {Done: true},
			"references":  {CompletedAt: &completed},
			"offer":       {},
		},
		Notes: []Note{
			{CreatedAt: adapterNow.AddDate(0, 0, -10)},
			{CreatedAt: adapterNow.AddDate(0, 0, -3)},
		},
		Dates: map[string]time.Time{
			"visa_expiry": adapterNow.AddDate(0, 0, 45),
		},
		CreatedAt: adapterNow.AddDate(0, 0, -20),
	}

	assert.Equal(t, "ap-1", adapter.ID(applicant))
	assert.Equal(t, "Ada Lovelace", adapter.Name(applicant))
	assert.Equal(t, "interview", adapter.Phase(applicant))
	assert.Equal(t, 6, adapter.DaysInPhase(applicant, adapterNow))
	assert.Equal(t, 20, adapter.DaysSinceCreation(applicant, adapterNow))
	assert.Equal(t, 20*24*60, adapter.MinutesSinceCreation(applicant, adapterNow))

	assert.True(t, adapter.IsTaskDone(applicant, "cv_reviewed"))
	assert.True(t, adapter.IsTaskDone(applicant, "references"))
	assert.False(t, adapter.IsTaskDone(applicant, "offer"))
	assert.False(t, adapter.IsTaskDone(applicant, "missing"))

	date, ok := adapter.DateField(applicant, "visa_expiry")
	require.True(t, ok)
	assert.Equal(t, applicant.Dates["visa_expiry"], date)
	_, ok = adapter.DateField(applicant, "permit_end")
	assert.False(t, ok)

	entered, ok := adapter.PhaseTimestamp(applicant, "screening")
	require.True(t, ok)
	assert.Equal(t, applicant.PhaseTimestamps["screening"], entered)
	_, ok = adapter.PhaseTimestamp(applicant, "offer")
	assert.False(t, ok)

	note, ok := adapter.LastNoteDate(applicant)
	require.True(t, ok)
	assert.Equal(t, adapterNow.AddDate(0, 0, -3), note)

	assert.False(t, adapter.IsArchived(applicant))
	assert.False(t, adapter.IsTerminalPhase(applicant))
}

func TestApplicantAdapter_MissingData(t *testing.T) {
	adapter := ApplicantAdapter{}
	bare := &Applicant{ID: "ap-2", FirstName: "Solo", Phase: "screening"}

	assert.Equal(t, "Solo", adapter.Name(bare))
	assert.Equal(t, 0, adapter.DaysInPhase(bare, adapterNow))
	assert.Equal(t, 0, adapter.DaysSinceCreation(bare, adapterNow))
	assert.Equal(t, 0, adapter.MinutesSinceCreation(bare, adapterNow))
	assert.False(t, adapter.IsTaskDone(bare, "anything"))
	_, ok := adapter.LastNoteDate(bare)
	assert.False(t, ok)

	zeroed := &Applicant{
		ID:              "ap-3",
		Phase:           "screening",
		PhaseTimestamps: map[string]time.Time{"screening": {}},
		Dates:           map[string]time.Time{"visa_expiry": {}},
	}
	_, ok = adapter.PhaseTimestamp(zeroed, "screening")
	assert.False(t, ok)
	_, ok = adapter.DateField(zeroed, "visa_expiry")
	assert.False(t, ok)
}

func TestLeadAdapter(t *testing.T) {
	adapter := LeadAdapter{}
	lead := &Lead{
		ID:      "ld-1",
		Company: "Initech",
		Contact: "Bill",
		Stage:   "negotiation",
		StageEntered: map[string]time.Time{
			"negotiation": adapterNow.AddDate(0, 0, -4),
		},
		Checklist: map[string]TaskState{
			"proposal_sent": {Done: true},
		},
		CreatedAt: adapterNow.AddDate(0, 0, -30),
	}

	assert.Equal(t, "ld-1", adapter.ID(lead))
	assert.Equal(t, "Initech", adapter.Name(lead))
	assert.Equal(t, "negotiation", adapter.Phase(lead))
	assert.Equal(t, 4, adapter.DaysInPhase(lead, adapterNow))
	assert.Equal(t, 30, adapter.DaysSinceCreation(lead, adapterNow))
	assert.True(t, adapter.IsTaskDone(lead, "proposal_sent"))
	assert.False(t, adapter.IsTaskDone(lead, "contract_signed"))
	assert.False(t, adapter.IsTerminalPhase(lead))
}

func TestLeadAdapter_NameFallsBackToContact(t *testing.T) {
	adapter := LeadAdapter{}
	assert.Equal(t, "Bill", adapter.Name(&Lead{Contact: "Bill"}))
}

func TestLeadAdapter_TerminalStages(t *testing.T) {
	adapter := LeadAdapter{}

	assert.True(t, adapter.IsTerminalPhase(&Lead{Stage: StageWon}))
	assert.True(t, adapter.IsTerminalPhase(&Lead{Stage: StageLost}))
	assert.False(t, adapter.IsTerminalPhase(&Lead{Stage: "qualified"}))
}
