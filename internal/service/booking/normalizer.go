package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	dateTimeLayout = dateLayout + " " + clockLayout
)

// weekdays are indexed from Monday so that week arithmetic stays simple.
var weekdays = []struct {
	name  string
	index int
}{
	{"monday", 0},
	{"tuesday", 1},
	{"wednesday", 2},
	{"thursday", 3},
	{"friday", 4},
	{"saturday", 5},
	{"sunday", 6},
}

var (
	clockRE   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
	isoDateRE = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

// NormalizedDateTime is a resolved calendar date and 24-hour clock time.
type NormalizedDateTime struct {
	Date string
	Time string
}

// In combines date and time into an absolute timestamp in loc.
func (n NormalizedDateTime) In(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeLayout, n.Date+" "+n.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("combine %q %q: %w", n.Date, n.Time, err)
	}
	return t, nil
}

// Normalizer resolves fuzzy day and time phrases relative to the current
// day in a fixed timezone.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc, now: time.Now}
}

func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize returns false when either phrase is empty or cannot be resolved.
func (n *Normalizer) Normalize(rawDate, rawTime string) (NormalizedDateTime, bool) {
	rawDate = strings.ToLower(strings.TrimSpace(rawDate))
	if rawDate == "" || strings.TrimSpace(rawTime) == "" {
		return NormalizedDateTime{}, false
	}

	date, ok := n.resolveDate(rawDate)
	if !ok {
		return NormalizedDateTime{}, false
	}
	clock, ok := ParseClock(rawTime)
	if !ok {
		return NormalizedDateTime{}, false
	}
	return NormalizedDateTime{Date: date, Time: clock}, true
}

func (n *Normalizer) resolveDate(rawDate string) (string, bool) {
	today := n.now().In(n.loc)
	todayIndex := (int(today.Weekday()) + 6) % 7

	for _, wd := range weekdays {
		if !strings.Contains(rawDate, wd.name) {
			continue
		}
		// "next X" is X in the following Monday-based week; otherwise the
		// nearest X on or after today.
		offset := (wd.index - todayIndex + 7) % 7
		if strings.Contains(rawDate, "next") {
			offset = 7 - todayIndex + wd.index
		}
		return today.AddDate(0, 0, offset).Format(dateLayout), true
	}

	if iso := isoDateRE.FindString(rawDate); iso != "" {
		day, err := time.ParseInLocation(dateLayout, iso, n.loc)
		if err != nil {
			return "", false
		}
		startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, n.loc)
		if day.Before(startOfToday) {
			return "", false
		}
		return iso, true
	}
	return "", false
}

// ParseClock converts '3pm', '9:30', '12am', 'noon' or 'midnight' to HH:MM.
func ParseClock(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "at "))

	switch raw {
	case "noon":
		return "12:00", true
	case "midnight":
		return "00:00", true
	}

	m := clockRE.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return "", false
		}
	}

	switch m[3] {
	case "pm":
		if hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}
