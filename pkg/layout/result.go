package layout

import (
	"github.com/matzehuels/vitalsgrid/pkg/errors"
)

// Status is the outcome of a store mutation.
type Status int

const (
	// Applied means the store changed and its version advanced.
	Applied Status = iota
	// Unchanged means the request was valid but already satisfied.
	Unchanged
	// Rejected means validation failed; Err holds the placement error.
	Rejected
	// NotFound means no tile has the requested id.
	NotFound
)

var statusNames = [...]string{"applied", "unchanged", "rejected", "not_found"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Result reports what a mutation did.
type Result struct {
	Status Status
	Err    error
}

// OK reports whether the store is in the requested state, changed or not.
func (r Result) OK() bool { return r.Status == Applied || r.Status == Unchanged }

// Message returns the user-facing validation message, or "".
func (r Result) Message() string { return errors.UserMessage(r.Err) }

func applied() Result   { return Result{Status: Applied} }
func unchanged() Result { return Result{Status: Unchanged} }

func rejected(err error) Result { return Result{Status: Rejected, Err: err} }

func notFound(id string) Result {
	return Result{Status: NotFound, Err: errors.New(errors.ErrCodeTileNotFound, "tile not found: %s", id)}
}
