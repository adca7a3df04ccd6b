package booking

import (
	"regexp"
	"strings"

	"github.com/Domenick1991/ragbooking/internal/domain"
)

const timeExpr = `(?:(?:1[0-2]|0?\d)(?::[0-5]\d)?\s?(?:am|pm)|(?:[01]?\d|2[0-3]):[0-5]\d|noon|midnight)`

var (
	emailRE     = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	timeRE      = regexp.MustCompile(`(?i)\b` + timeExpr + `\b`)
	timeOnlyRE  = regexp.MustCompile(`(?i)^` + timeExpr + `$`)
	weekdayRE   = regexp.MustCompile(`(?i)\b(?:(?:next|this|coming)\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	nameRE      = regexp.MustCompile(`\b(?i:my name is|i am|i'm|this is)\s+([A-Z][A-Za-z'.-]*(?:\s+[A-Z][A-Za-z'.-]*)*)`)
	nonAlnumRE  = regexp.MustCompile(`[^\p{L}\p{N} ]`)
	sentenceEnd = regexp.MustCompile(`[.;!?]`)
)

// requestKeywordRE flags a name candidate that swallowed the booking request
// itself: any intent keyword, multi-word ones matched as phrases.
var requestKeywordRE = func() *regexp.Regexp {
	keywords := make([]string, 0, len(actionKeywords)+len(objectKeywords)+1)
	for _, k := range append(append([]string{"booking"}, actionKeywords...), objectKeywords...) {
		keywords = append(keywords, strings.ReplaceAll(regexp.QuoteMeta(k), " ", `\s+`))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(keywords, "|") + `)\b`)
}()

// patternExtract is the deterministic extractor used when the model reply is unusable.
func patternExtract(text string) domain.BookingDraft {
	var draft domain.BookingDraft
	if m := nameRE.FindStringSubmatch(text); m != nil {
		draft.Name = strings.TrimSpace(m[1])
	}
	draft.Email = emailRE.FindString(text)
	draft.Date = weekdayRE.FindString(text)
	draft.Time = timeRE.FindString(text)
	return draft
}

func normalizeForMatch(s string) string {
	return nonAlnumRE.ReplaceAllString(strings.ToLower(s), " ")
}
