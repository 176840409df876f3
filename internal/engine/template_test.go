package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		context  map[string]any
		want     string
	}{
		{
			name:     "single field",
			template: "Day {{d}}",
			context:  map[string]any{"d": 5},
			want:     "Day 5",
		},
		{
			name:     "multiple fields",
			template: "{{name}} waited {{days_waiting}} days",
			context:  map[string]any{"name": "Ada", "days_waiting": 12},
			want:     "Ada waited 12 days",
		},
		{
			name:     "unresolved key stays verbatim",
			template: "{{x}}",
			context:  map[string]any{},
			want:     "{{x}}",
		},
		{
			name:     "mixed resolved and unresolved",
			template: "{{known}} and {{unknown}}",
			context:  map[string]any{"known": "yes"},
			want:     "yes and {{unknown}}",
		},
		{
			name:     "empty template",
			template: "",
			context:  map[string]any{"d": 5},
			want:     "",
		},
		{
			name:     "no merge fields",
			template: "plain text",
			context:  map[string]any{"d": 5},
			want:     "plain text",
		},
		{
			name:     "nil context",
			template: "Day {{d}}",
			context:  nil,
			want:     "Day {{d}}",
		},
		{
			name:     "no recursive substitution",
			template: "{{a}}",
			context:  map[string]any{"a": "{{b}}", "b": "deep"},
			want:     "{{b}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTemplate(tt.template, tt.context))
		})
	}
}

func TestResolveTemplate_ValueTypes(t *testing.T) {
	context := map[string]any{
		"str":   "text",
		"int":   42,
		"int64": int64(9000000000),
		"float": 2.5,
		"whole": float64(3),
		"bool":  true,
		"date":  time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, "text", ResolveTemplate("{{str}}", context))
	assert.Equal(t, "42", ResolveTemplate("{{int}}", context))
	assert.Equal(t, "9000000000", ResolveTemplate("{{int64}}", context))
	assert.Equal(t, "2.5", ResolveTemplate("{{float}}", context))
	assert.Equal(t, "3", ResolveTemplate("{{whole}}", context))
	assert.Equal(t, "true", ResolveTemplate("{{bool}}", context))
	assert.Equal(t, "2026-03-15", ResolveTemplate("{{date}}", context))
}
