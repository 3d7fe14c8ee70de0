package hours

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ZakWinnick/RivianSpotter-sub000/internal/locations"
)

// OpenStatus is the tri-state answer for "is this location open right now".
// Unparseable hours yield StatusUnknown; filter callers treat that as not open.
type OpenStatus int

const (
	StatusUnknown OpenStatus = iota
	StatusOpen
	StatusClosed
)

// timeRangePattern matches strings like "9:00 AM - 6:00 PM" or "9 AM-5 PM".
var timeRangePattern = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(AM|PM)\s*[-–]\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)`)

// Evaluator answers open-now and coming-soon questions from a record's free
// text hours and its opening date.
type Evaluator struct {
	// ComingSoonWindowDays bounds how far ahead an opening date still counts
	// as "coming soon".
	ComingSoonWindowDays int

	// Now is swappable for tests.
	Now func() time.Time
}

func NewEvaluator(comingSoonWindowDays int) *Evaluator {
	return &Evaluator{
		ComingSoonWindowDays: comingSoonWindowDays,
		Now:                  time.Now,
	}
}

// Status reports whether the location is open at the current wall-clock time.
func (e *Evaluator) Status(rec locations.LocationRecord) OpenStatus {
	if !rec.IsOpen {
		return StatusClosed
	}

	text := strings.ToLower(rec.Hours)
	switch {
	case text == "":
		return StatusUnknown
	case strings.Contains(text, "open 24 hours"), strings.Contains(text, "24/7"):
		return StatusOpen
	case strings.Contains(text, "coming soon"), strings.Contains(text, "opening soon"):
		return StatusClosed
	case strings.Contains(text, "closed"):
		return StatusClosed
	}

	m := timeRangePattern.FindStringSubmatch(rec.Hours)
	if m == nil {
		return StatusUnknown
	}

	open := minutesOfDay(m[1], m[2], m[3])
	close := minutesOfDay(m[4], m[5], m[6])
	if open < 0 || close < 0 {
		return StatusUnknown
	}

	now := e.Now()
	cur := now.Hour()*60 + now.Minute()

	if close < open {
		// Overnight range, e.g. 8 PM - 2 AM.
		if cur >= open || cur < close {
			return StatusOpen
		}
		return StatusClosed
	}
	if cur >= open && cur < close {
		return StatusOpen
	}
	return StatusClosed
}

// ComingSoon reports whether the location opens within the configured window.
// A "coming soon" marker in the hours text counts even without a date.
func (e *Evaluator) ComingSoon(rec locations.LocationRecord) bool {
	text := strings.ToLower(rec.Hours)
	if strings.Contains(text, "coming soon") || strings.Contains(text, "opening soon") {
		return true
	}

	if rec.OpeningDate == "" {
		return false
	}
	opening, err := time.Parse("2006-01-02", rec.OpeningDate)
	if err != nil {
		return false
	}

	now := e.Now()
	limit := now.AddDate(0, 0, e.ComingSoonWindowDays)
	return opening.After(now) && !opening.After(limit)
}

func minutesOfDay(hourStr, minuteStr, meridiem string) int {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return -1
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute > 59 {
			return -1
		}
	}
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(meridiem, "PM") {
		hour += 12
	}
	return hour*60 + minute
}
