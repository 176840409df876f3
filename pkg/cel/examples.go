package cel

// GuardExpressionExamples documents the guard vocabulary for rule authors.
var GuardExpressionExamples = map[string]string{
	"phase_equals":     `phase == "interview"`,
	"phase_in_list":    `phase in ["screening", "interview", "offer"]`,
	"applicants_only":  `kind == "applicant"`,
	"leads_only":       `kind == "lead"`,
	"slow_movers":      `days_in_phase > 7`,
	"fresh_records":    `days_since_creation < 30`,
	"name_prefix":      `name.startsWith("A")`,
	"combined":         `kind == "lead" && phase == "negotiation" && days_in_phase >= 3`,
	"exclude_by_phase": `phase != "onboarding"`,
	"stalled_and_old":  `days_in_phase > 14 || days_since_creation > 90`,
}
