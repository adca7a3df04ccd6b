package domain

import "time"

// Booking is a confirmed appointment tied to a chat session. It is written
// once and never updated.
type Booking struct {
	ID        int64
	SessionID string
	Name      string
	Email     string
	MeetingAt time.Time
	Notes     string
	CreatedAt time.Time
}

type BookingField string

const (
	FieldName  BookingField = "name"
	FieldEmail BookingField = "email"
	FieldDate  BookingField = "date"
	FieldTime  BookingField = "time"
)

// BookingFields lists the slots in the order they are asked for.
var BookingFields = []BookingField{FieldName, FieldEmail, FieldDate, FieldTime}

// BookingDraft holds the slots collected so far for a session. An empty
// string means the slot has not been collected yet.
type BookingDraft struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
}

func (d BookingDraft) Get(field BookingField) string {
	switch field {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldDate:
		return d.Date
	case FieldTime:
		return d.Time
	default:
		return ""
	}
}

// Merge fills forward: values present in next win, absent ones keep d's value.
func (d BookingDraft) Merge(next BookingDraft) BookingDraft {
	return BookingDraft{
		Name:  firstNonEmpty(next.Name, d.Name),
		Email: firstNonEmpty(next.Email, d.Email),
		Date:  firstNonEmpty(next.Date, d.Date),
		Time:  firstNonEmpty(next.Time, d.Time),
	}
}

func (d BookingDraft) Missing() []BookingField {
	missing := make([]BookingField, 0, len(BookingFields))
	for _, f := range BookingFields {
		if d.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (d BookingDraft) Complete() bool {
	return len(d.Missing()) == 0
}

func (d BookingDraft) Empty() bool {
	return d == BookingDraft{}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
