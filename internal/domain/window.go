package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Slot identifies one of the two daily review windows a chat may declare.
type Slot int

const (
	SlotMorning Slot = iota
	SlotEvening
)

// Label returns the localized window name used in reminder texts.
func (s Slot) Label() string {
	if s == SlotEvening {
		return "вечернее"
	}
	return "утреннее"
}

func (s Slot) String() string {
	if s == SlotEvening {
		return "evening"
	}
	return "morning"
}

// Hours accept one or two digits (9:00 and 09:00 are both fine), minutes are
// always two digits.
var windowRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)-([01]?\d|2[0-3]):([0-5]\d)$`)

// TimeWindow is a validated daily time range. Raw keeps the user's original
// HH:MM-HH:MM spelling for echoing back in replies and reminders.
// No ordering is enforced between start and end; the check is purely
// syntactic, so reversed windows like 23:00-01:00 pass.
type TimeWindow struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	Raw         string
}

// Validate reports whether s is a well-formed HH:MM-HH:MM window.
func Validate(s string) bool {
	return windowRe.MatchString(s)
}

// ParseWindow validates s and decomposes it into a TimeWindow.
func ParseWindow(s string) (TimeWindow, error) {
	m := windowRe.FindStringSubmatch(s)
	if m == nil {
		return TimeWindow{}, fmt.Errorf("invalid window %q: expected HH:MM-HH:MM", s)
	}
	// The regex guarantees the submatches are small decimal numbers.
	sh, _ := strconv.Atoi(m[1])
	sm, _ := strconv.Atoi(m[2])
	eh, _ := strconv.Atoi(m[3])
	em, _ := strconv.Atoi(m[4])
	return TimeWindow{
		StartHour:   sh,
		StartMinute: sm,
		EndHour:     eh,
		EndMinute:   em,
		Raw:         s,
	}, nil
}

func (w TimeWindow) String() string { return w.Raw }
