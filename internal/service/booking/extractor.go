package booking

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/llm"
	"go.uber.org/zap"
)

const maxNameLength = 60

const extractionPrompt = `You are a strict meeting booking extraction assistant.

Your ONLY job is to extract 4 fields from the user's message:
- name
- email
- date
- time

CRITICAL RULES:
1) Every value you output MUST be an exact substring of the user's message.
   - Do NOT invent, modify, or correct names or emails.
   - If the message says 'I am Bibek', the name must be exactly 'Bibek'.
   - If you cannot clearly find the name, set name to null.

2) A DATE is ANY natural-language phrase that refers to a day or date.
   Examples: 'tomorrow', 'next Friday', 'this coming Monday', 'July 5'.
   - Return the date EXACTLY as it appears in the text.
   - Do NOT convert, expand, or interpret dates.

3) A TIME is ANY time-like phrase.
   Examples: '3pm', '14:30', '10 am', 'noon'.
   - Return it EXACTLY as written.

4) NEVER compute or infer anything. If a field is not clearly present, set it to null.

5) Output format: return ONLY a single JSON object, no arrays, no markdown, no explanation,
   exactly this shape: {"name": ..., "email": ..., "date": ..., "time": ...}
   Do NOT wrap the JSON in backticks. Do NOT output multiple JSON objects.
   Do NOT include ellipses '...' as values; return null when unsure.`

var jsonBlockRE = regexp.MustCompile(`(?s)\{.*?\}`)

// placeholderValues are what models tend to emit instead of a JSON null.
var placeholderValues = map[string]struct{}{
	"null": {}, "none": {}, "n/a": {}, "...": {}, "unknown": {},
}

// Extractor pulls booking slots out of free text. It never fails: when the
// model is unreachable or answers garbage it falls back to pattern matching,
// and every value is checked against the literal input before it is returned.
type Extractor struct {
	llm     llm.Generator
	timeout time.Duration
	log     *zap.Logger
}

func NewExtractor(generator llm.Generator, timeout time.Duration, log *zap.Logger) *Extractor {
	return &Extractor{llm: generator, timeout: timeout, log: log}
}

func (e *Extractor) Extract(ctx context.Context, text string) domain.BookingDraft {
	if strings.TrimSpace(text) == "" {
		return domain.BookingDraft{}
	}

	candidate, ok := e.askModel(ctx, text)
	if !ok {
		candidate = patternExtract(text)
	}
	return sanitize(candidate, text)
}

func (e *Extractor) askModel(ctx context.Context, text string) (domain.BookingDraft, bool) {
	if e.llm == nil {
		return domain.BookingDraft{}, false
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	reply, err := e.llm.Generate(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: extractionPrompt},
		{Role: domain.RoleUser, Content: "Extract the booking details from:\n\n" + text},
	})
	if err != nil {
		e.log.Warn("booking extractor degraded to patterns", zap.Error(err))
		return domain.BookingDraft{}, false
	}

	draft, ok := parseReply(reply)
	if !ok {
		e.log.Info("booking extractor reply unusable, falling back to patterns")
	}
	return draft, ok
}

// parseReply decodes the first brace-delimited JSON object in reply.
func parseReply(reply string) (domain.BookingDraft, bool) {
	for _, block := range jsonBlockRE.FindAllString(reply, -1) {
		var fields map[string]any
		if err := json.Unmarshal([]byte(block), &fields); err != nil {
			continue
		}
		return domain.BookingDraft{
			Name:  stringField(fields, "name"),
			Email: stringField(fields, "email"),
			Date:  stringField(fields, "date"),
			Time:  stringField(fields, "time"),
		}, true
	}
	return domain.BookingDraft{}, false
}

func stringField(fields map[string]any, key string) string {
	s, ok := fields[key].(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if _, placeholder := placeholderValues[strings.ToLower(s)]; placeholder {
		return ""
	}
	return s
}

// sanitize drops anything the user did not literally type and backfills
// email, time and date from the raw text.
func sanitize(candidate domain.BookingDraft, text string) domain.BookingDraft {
	lowerText := strings.ToLower(text)
	out := domain.BookingDraft{
		Name: cleanName(candidate.Name, text),
		Time: strings.TrimSpace(candidate.Time),
		Date: strings.TrimSpace(candidate.Date),
	}

	if email := strings.TrimSpace(candidate.Email); email != "" && strings.Contains(text, email) {
		out.Email = email
	}
	if out.Time != "" && !strings.Contains(lowerText, strings.ToLower(out.Time)) {
		out.Time = ""
	}
	if out.Date != "" && !strings.Contains(lowerText, strings.ToLower(out.Date)) {
		out.Date = ""
	}

	out.Date, out.Time = splitDateTime(out.Date, out.Time)

	if out.Email == "" {
		out.Email = emailRE.FindString(text)
	}
	if out.Time == "" {
		out.Time = timeRE.FindString(text)
	}
	if out.Date == "" {
		out.Date = weekdayRE.FindString(text)
	}
	return out
}

func cleanName(name, text string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSpace(strings.SplitN(name, "\n", 2)[0])
	if loc := sentenceEnd.FindStringIndex(name); loc != nil {
		name = strings.TrimSpace(name[:loc[0]])
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
		if i := strings.LastIndex(name, " "); i > 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return ""
	}

	if requestKeywordRE.MatchString(name) {
		return ""
	}

	grounded := strings.TrimSpace(normalizeForMatch(name))
	if grounded == "" || !strings.Contains(normalizeForMatch(text), grounded) {
		return ""
	}
	return name
}

// splitDateTime discards dates that are really times and moves a time
// embedded in the date phrase into the time slot when that slot is empty.
func splitDateTime(date, tm string) (string, string) {
	if date == "" {
		return date, tm
	}
	if timeOnlyRE.MatchString(date) {
		return "", tm
	}

	if loc := timeRE.FindStringIndex(date); loc != nil {
		if tm == "" {
			tm = date[loc[0]:loc[1]]
		}
		date = strings.TrimRight(date[:loc[0]], " ,.-")
		lower := strings.ToLower(date)
		if lower == "at" {
			date = ""
		} else if strings.HasSuffix(lower, " at") {
			date = strings.TrimRight(date[:len(date)-3], " ,.-")
		}
	}
	if strings.HasPrefix(strings.ToLower(date), "at ") {
		date = strings.TrimSpace(date[3:])
	}
	return date, tm
}
