package booking

import (
	"regexp"
	"strings"
)

var actionKeywords = []string{"book", "schedule", "set up", "arrange", "reserve", "organize"}

var objectKeywords = []string{"interview", "meeting", "appointment", "call"}

var bookingPhrases = []string{
	"book me an interview",
	"book an interview",
	"book a meeting",
	"schedule an interview",
	"schedule a meeting",
	"schedule a call",
	"set up a call",
	"set up a meeting",
}

// intentPatterns matches an action keyword followed anywhere later by an object keyword.
var intentPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(actionKeywords)*len(objectKeywords))
	for _, action := range actionKeywords {
		for _, obj := range objectKeywords {
			patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(action)+`\b.*\b`+regexp.QuoteMeta(obj)+`\b`))
		}
	}
	return patterns
}()

// IsBookingRequest reports whether text reads like a request to book a meeting.
func IsBookingRequest(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lowered := strings.ToLower(text)

	for _, re := range intentPatterns {
		if re.MatchString(lowered) {
			return true
		}
	}
	for _, phrase := range bookingPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
