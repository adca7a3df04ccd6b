package booking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type generatorFunc func(ctx context.Context, messages []domain.ChatMessage) (string, error)

func (f generatorFunc) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	return f(ctx, messages)
}

func replying(reply string) llm.Generator {
	return generatorFunc(func(context.Context, []domain.ChatMessage) (string, error) {
		return reply, nil
	})
}

func failing(err error) llm.Generator {
	return generatorFunc(func(context.Context, []domain.ChatMessage) (string, error) {
		return "", err
	})
}

func newTestExtractor(g llm.Generator) *Extractor {
	return NewExtractor(g, 0, zap.NewNop())
}

func TestExtractor_ModelReplyWithReasoningNoise(t *testing.T) {
	text := "I'm Bibek, my email is bibek@x.com, next Monday at 3pm"
	reply := `<think>they want {a booking}</think>
{"name": "Bibek", "email": "bibek@x.com", "date": "next Monday at 3pm", "time": null}`

	got := newTestExtractor(replying(reply)).Extract(context.Background(), text)

	assert.Equal(t, domain.BookingDraft{Name: "Bibek", Email: "bibek@x.com", Date: "next Monday", Time: "3pm"}, got)
}

func TestExtractor_SendsStrictPrompt(t *testing.T) {
	var seen []domain.ChatMessage
	g := generatorFunc(func(_ context.Context, messages []domain.ChatMessage) (string, error) {
		seen = messages
		return `{"name": null, "email": null, "date": null, "time": null}`, nil
	})

	newTestExtractor(g).Extract(context.Background(), "book a meeting")

	require.Len(t, seen, 2)
	assert.Equal(t, domain.RoleSystem, seen[0].Role)
	assert.Contains(t, seen[0].Content, "exact substring")
	assert.Equal(t, domain.RoleUser, seen[1].Role)
	assert.True(t, strings.HasSuffix(seen[1].Content, "book a meeting"))
}

func TestExtractor_DropsFabricatedValues(t *testing.T) {
	text := "book me an interview next Friday at 3pm"
	reply := `{"name": "John Doe", "email": "john@example.com", "date": "2026-10-23", "time": "15:00"}`

	got := newTestExtractor(replying(reply)).Extract(context.Background(), text)

	assert.Empty(t, got.Name)
	assert.Empty(t, got.Email)
	assert.Equal(t, "next Friday", got.Date)
	assert.Equal(t, "3pm", got.Time)
}

func TestExtractor_BackendUnavailableFallsBack(t *testing.T) {
	text := "Hi, this is Sarah Connor. Reach me at sarah@sky.net, this Thursday at noon."

	got := newTestExtractor(failing(llm.ErrBackendUnavailable)).Extract(context.Background(), text)

	assert.Equal(t, domain.BookingDraft{Name: "Sarah Connor", Email: "sarah@sky.net", Date: "this Thursday", Time: "noon"}, got)
}

func TestExtractor_UnparseableReplyFallsBack(t *testing.T) {
	text := "My name is Ana, ana@mail.org, Friday 10:30"

	got := newTestExtractor(replying("Sure! Here are the details: name Ana")).Extract(context.Background(), text)

	assert.Equal(t, domain.BookingDraft{Name: "Ana", Email: "ana@mail.org", Date: "Friday", Time: "10:30"}, got)
}

func TestExtractor_NilGenerator(t *testing.T) {
	got := newTestExtractor(nil).Extract(context.Background(), "I am Lee, lee@x.io")
	assert.Equal(t, "Lee", got.Name)
	assert.Equal(t, "lee@x.io", got.Email)
}

func TestExtractor_EmptyText(t *testing.T) {
	called := false
	g := generatorFunc(func(context.Context, []domain.ChatMessage) (string, error) {
		called = true
		return "", nil
	})

	assert.Equal(t, domain.BookingDraft{}, newTestExtractor(g).Extract(context.Background(), "  "))
	assert.False(t, called)
}

func TestExtractor_RejectsRequestAsName(t *testing.T) {
	text := "Book me an interview please"
	reply := `{"name": "Book me an interview", "email": null, "date": null, "time": null}`

	got := newTestExtractor(replying(reply)).Extract(context.Background(), text)

	assert.Empty(t, got.Name)
}

func TestExtractor_RejectsMultiWordKeywordInName(t *testing.T) {
	text := "please set up a slot for me"
	reply := `{"name": "set up", "email": null, "date": null, "time": null}`

	got := newTestExtractor(replying(reply)).Extract(context.Background(), text)

	assert.Empty(t, got.Name)
}

func TestExtractor_PlaceholderValues(t *testing.T) {
	reply := `{"name": "null", "email": "...", "date": "None", "time": "unknown"}`

	got := newTestExtractor(replying(reply)).Extract(context.Background(), "hello there")

	assert.Equal(t, domain.BookingDraft{}, got)
}

func TestExtractor_DateThatIsATime(t *testing.T) {
	text := "can we do 3pm"
	reply := `{"name": null, "email": null, "date": "3pm", "time": null}`

	got := newTestExtractor(replying(reply)).Extract(context.Background(), text)

	assert.Empty(t, got.Date)
	assert.Equal(t, "3pm", got.Time)
}

func TestExtractor_EmbeddedTimeKeepsExistingTime(t *testing.T) {
	text := "Tuesday at 9am, or rather 10am"
	reply := `{"name": null, "email": null, "date": "Tuesday at 9am", "time": "10am"}`

	got := newTestExtractor(replying(reply)).Extract(context.Background(), text)

	assert.Equal(t, "Tuesday", got.Date)
	assert.Equal(t, "10am", got.Time)
}

func TestCleanName(t *testing.T) {
	long := "Alexandria Catherine Montgomery Fitzgerald Worthington Smythe Ravenscroft"
	text := "hello, I am " + long

	got := cleanName(long, text)

	assert.LessOrEqual(t, len(got), maxNameLength)
	assert.True(t, strings.HasPrefix(long, got))
	assert.Equal(t, " ", string(long[len(got)]))

	assert.Equal(t, "Mary", cleanName("Mary\nand then some", "I'm Mary"))
	assert.Equal(t, "Tom", cleanName("Tom. I need a slot", "this is Tom"))
	assert.Equal(t, "O'Brien", cleanName("O'Brien", "name: o'brien"))
	assert.Empty(t, cleanName("Meeting Room", "Meeting Room 4"))
	assert.Empty(t, cleanName("Zed", "I'm Ted"))
	assert.Empty(t, cleanName("Set up Tom", "Set up Tom for friday"))
	assert.Equal(t, "Setup", cleanName("Setup", "I'm Setup"))
	assert.Equal(t, "Zoë", cleanName("Zoë", "this is Zoë"))
}

func TestCleanName_TruncatesOnRuneBoundary(t *testing.T) {
	long := "A" + strings.Repeat("é", 70)

	got := cleanName(long, "I am "+long)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxNameLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(long, got))
}

func TestSplitDateTime(t *testing.T) {
	testCases := []struct {
		date, time         string
		wantDate, wantTime string
	}{
		{"next Friday at 3pm", "", "next Friday", "3pm"},
		{"at 3pm", "", "", "3pm"},
		{"noon", "", "", ""},
		{"at next Monday", "", "next Monday", ""},
		{"Monday, 14:30", "", "Monday", "14:30"},
		{"", "3pm", "", "3pm"},
	}

	for _, tc := range testCases {
		t.Run(tc.date, func(t *testing.T) {
			d, tm := splitDateTime(tc.date, tc.time)
			assert.Equal(t, tc.wantDate, d)
			assert.Equal(t, tc.wantTime, tm)
		})
	}
}

// Every non-empty name or email the extractor returns must be present in
// the input, whatever the model claims.
func TestExtractor_GroundingProperty(t *testing.T) {
	names := []string{"Bibek", "Ana Lima", "Jean-Luc", "Priya Sharma"}
	emails := []string{"bk@x.com", "al@mail.org", "jl@starfleet.io", "ps_01@corp.co"}

	for i := range names {
		for _, includeName := range []bool{true, false} {
			for _, includeEmail := range []bool{true, false} {
				parts := []string{"please book an interview"}
				if includeName {
					parts = append(parts, "my name is "+names[i])
				}
				if includeEmail {
					parts = append(parts, "write to "+emails[i])
				}
				text := strings.Join(parts, ", ")
				reply := fmt.Sprintf(`{"name": %q, "email": %q, "date": null, "time": null}`, names[i], emails[i])

				got := newTestExtractor(replying(reply)).Extract(context.Background(), text)

				if got.Name != "" {
					assert.Contains(t, normalizeForMatch(text), strings.TrimSpace(normalizeForMatch(got.Name)), text)
				}
				if got.Email != "" {
					assert.Contains(t, text, got.Email, text)
				}
				assert.Equal(t, includeName, got.Name != "", text)
				assert.Equal(t, includeEmail, got.Email != "", text)
			}
		}
	}
}

func TestExtractor_RespectsContextTimeout(t *testing.T) {
	g := generatorFunc(func(ctx context.Context, _ []domain.ChatMessage) (string, error) {
		<-ctx.Done()
		return "", fmt.Errorf("%w: %v", llm.ErrBackendUnavailable, ctx.Err())
	})
	e := NewExtractor(g, 10*time.Millisecond, zap.NewNop())

	got := e.Extract(context.Background(), "I'm Kim, kim@x.com")

	assert.Equal(t, "Kim", got.Name)
	assert.Equal(t, "kim@x.com", got.Email)
}
