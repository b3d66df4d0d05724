package rides

import (
	"fmt"
	"strings"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// Kind is the stable, client-facing error classification. Handlers map
// kinds to HTTP statuses; messages never carry storage or stack detail.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindNoDrivers         Kind = "no_drivers_available"
	KindAlreadyTerminal   Kind = "already_terminal"
)

type Error struct {
	Kind    Kind
	Message string
	// ValidTargets is populated for KindInvalidTransition only.
	ValidTargets []models.Status
}

func (e *Error) Error() string { return e.Message }

func errNotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("ride %s not found", id)}
}

func errForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "ride belongs to another requester"}
}

func errNoDrivers() *Error {
	return &Error{Kind: KindNoDrivers, Message: "no drivers available"}
}

func errAlreadyTerminal(s models.Status) *Error {
	return &Error{Kind: KindAlreadyTerminal, Message: fmt.Sprintf("ride is already %s", s)}
}

func errInvalidTransition(from, to models.Status, valid []models.Status) *Error {
	names := make([]string, len(valid))
	for i, s := range valid {
		names[i] = string(s)
	}
	return &Error{
		Kind:         KindInvalidTransition,
		Message:      fmt.Sprintf("cannot move from %s to %s; valid targets: %s", from, to, strings.Join(names, ", ")),
		ValidTargets: valid,
	}
}

func errValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}
