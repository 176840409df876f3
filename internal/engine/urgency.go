package engine

import "time"

// resolveUrgency starts from the rule's base urgency and applies the
// optional escalation clause. The relevant elapsed time is whichever of
// days-in-phase and days-since-creation is larger; once it meets the
// escalation threshold the escalation urgency wins outright. Escalation is a
// pure override: nothing requires it to move toward a more severe level.
func resolveUrgency[E any](e E, rule Rule, a Adapter[E], now time.Time) Urgency {
	urgency := rule.Urgency
	if rule.Escalation != nil && rule.Escalation.Urgency.Valid() {
		relevant := a.DaysInPhase(e, now)
		if since := a.DaysSinceCreation(e, now); since > relevant {
			relevant = since
		}
		if relevant >= rule.Escalation.MinDays {
			urgency = rule.Escalation.Urgency
		}
	}
	if !urgency.Valid() {
		urgency = UrgencyInfo
	}
	return urgency
}
