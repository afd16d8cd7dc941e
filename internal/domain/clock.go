package domain

import "time"

// ReminderLead is how long before a window opens the reminder goes out.
const ReminderLead = 10 * time.Minute

// NextFire returns the next moment a reminder for a window starting at
// startHour:startMinute should fire. The candidate is today's start minus
// lead, in now's location; subtracting the lead may roll past midnight into
// the previous calendar day. A candidate that is not strictly after now
// moves forward exactly one calendar day (same wall-clock time).
func NextFire(now time.Time, startHour, startMinute int, lead time.Duration) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), startHour, startMinute, 0, 0, now.Location()).Add(-lead)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
