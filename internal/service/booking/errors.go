package booking

import "errors"

var ErrSessionRequired = errors.New("session id is required")

// Kind tells callers which branch of the dialogue a Result came from.
type Kind string

const (
	KindCollecting          Kind = "FIELDS_MISSING"
	KindNormalizationFailed Kind = "NORMALIZATION_FAILED"
	KindPersistence         Kind = "PERSISTENCE_ERROR"
	KindBooked              Kind = "BOOKED"
)
