package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T) *GuardEvaluator {
	t.Helper()
	ev, err := NewGuardEvaluator()
	require.NoError(t, err)
	return ev
}

func TestGuardEvaluator_Validate(t *testing.T) {
	ev := newTestEvaluator(t)

	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{
			name:       "simple phase comparison",
			expression: `phase == "interview"`,
			wantErr:    false,
		},
		{
			name:       "compound condition",
			expression: `kind == "applicant" && days_in_phase > 3`,
			wantErr:    false,
		},
		{
			name:       "string method",
			expression: `name.startsWith("A")`,
			wantErr:    false,
		},
		{
			name:       "non-boolean output",
			expression: `days_in_phase + 1`,
			wantErr:    true,
		},
		{
			name:       "unknown variable",
			expression: `salary > 100`,
			wantErr:    true,
		},
		{
			name:       "syntax error",
			expression: `phase == `,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ev.Validate(tt.expression)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuardEvaluator_Evaluate(t *testing.T) {
	ev := newTestEvaluator(t)

	facts := map[string]any{
		"id":                  "app-1",
		"name":                "Ada Lovelace",
		"kind":                "applicant",
		"phase":               "interview",
		"days_in_phase":       5,
		"days_since_creation": 12,
	}

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{
			name:       "matching phase",
			expression: `phase == "interview"`,
			want:       true,
		},
		{
			name:       "non-matching kind",
			expression: `kind == "lead"`,
			want:       false,
		},
		{
			name:       "numeric threshold",
			expression: `days_in_phase >= 5 && days_since_creation < 30`,
			want:       true,
		},
		{
			name:       "name prefix",
			expression: `name.startsWith("Ada")`,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expression, facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuardEvaluator_EvaluateInvalidExpression(t *testing.T) {
	ev := newTestEvaluator(t)

	_, err := ev.Evaluate(`missing_var == 1`, map[string]any{})
	assert.Error(t, err)
}

func TestGuardEvaluator_CachesPrograms(t *testing.T) {
	ev := newTestEvaluator(t)

	facts := map[string]any{
		"id":                  "lead-1",
		"name":                "Acme",
		"kind":                "lead",
		"phase":               "negotiation",
		"days_in_phase":       2,
		"days_since_creation": 4,
	}

	for i := 0; i < 3; i++ {
		got, err := ev.Evaluate(`phase == "negotiation"`, facts)
		require.NoError(t, err)
		assert.True(t, got)
	}

	ev.mu.RLock()
	defer ev.mu.RUnlock()
	assert.Len(t, ev.programs, 1)
}
