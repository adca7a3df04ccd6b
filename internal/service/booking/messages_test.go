package booking

import (
	"testing"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMissingMessage(t *testing.T) {
	assert.Equal(t, "I'm sorry, I didn't get your email. Could you share it?",
		missingMessage([]domain.BookingField{domain.FieldEmail}))

	assert.Equal(t, "I'm sorry, I didn't get the appointment date or the appointment time. Could you share them?",
		missingMessage([]domain.BookingField{domain.FieldDate, domain.FieldTime}))

	assert.Equal(t, "I'm sorry, I didn't get your name, your email, the appointment date or the appointment time. Could you share them?",
		missingMessage(domain.BookingFields))

	assert.Equal(t, "I'm sorry, I need a bit more info to book this.", missingMessage(nil))
}

func TestConfirmationMessage(t *testing.T) {
	at := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "Bibek, your interview is booked for 2026-10-19 at 15:00. We'll reach out at bibek@x.com.",
		confirmationMessage("Bibek", "bibek@x.com", at))
	assert.Equal(t, "Your interview is booked for 2026-10-19 at 15:00.",
		confirmationMessage("", "", at))
}
