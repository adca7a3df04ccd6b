package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
)

const normalizationFailedMessage = "I couldn't understand the appointment date/time. Please share the day and time, e.g. 'next Friday at 3pm'."

var fieldLabels = map[domain.BookingField]string{
	domain.FieldName:  "your name",
	domain.FieldEmail: "your email",
	domain.FieldDate:  "the appointment date",
	domain.FieldTime:  "the appointment time",
}

func missingMessage(missing []domain.BookingField) string {
	parts := make([]string, 0, len(missing))
	for _, f := range missing {
		if label, ok := fieldLabels[f]; ok {
			parts = append(parts, label)
		}
	}

	switch len(parts) {
	case 0:
		return "I'm sorry, I need a bit more info to book this."
	case 1:
		return fmt.Sprintf("I'm sorry, I didn't get %s. Could you share it?", parts[0])
	default:
		return fmt.Sprintf("I'm sorry, I didn't get %s or %s. Could you share them?",
			strings.Join(parts[:len(parts)-1], ", "), parts[len(parts)-1])
	}
}

func confirmationMessage(name, email string, at time.Time) string {
	msg := fmt.Sprintf("your interview is booked for %s.", at.Format("2006-01-02 at 15:04"))
	if name != "" {
		msg = name + ", " + msg
	} else {
		msg = "Y" + msg[1:]
	}
	if email != "" {
		msg += fmt.Sprintf(" We'll reach out at %s.", email)
	}
	return msg
}
