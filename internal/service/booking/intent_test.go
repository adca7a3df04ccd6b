package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBookingRequest(t *testing.T) {
	testCases := []struct {
		text string
		want bool
	}{
		{"book me an interview", true},
		{"Could you SCHEDULE a quick call with the team?", true},
		{"I'd like to set up a meeting for next week", true},
		{"please arrange an appointment", true},
		{"reserve some time for an interview", true},
		{"organize the kickoff meeting", true},
		{"Schedule a call", true},
		{"", false},
		{"   ", false},
		{"what does the document say about pricing?", false},
		{"next Friday at 3pm", false},
		{"the meeting was booked yesterday", false},
		{"I read a book about callbacks", false},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, IsBookingRequest(tc.text))
		})
	}
}
