package core

import (
	"net/http"

	"github.com/go-faster/errors"
)

type FailureKind int

const (
	InvalidInput FailureKind = iota
	StoreUnavailable
	SimulationFailure
	QueryFailure
)

func (k FailureKind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case StoreUnavailable:
		return "StoreUnavailable"
	case SimulationFailure:
		return "SimulationFailure"
	case QueryFailure:
		return "QueryFailure"
	default:
		return "Unknown"
	}
}

func (k FailureKind) StatusCode() int {
	if k == InvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

const (
	NoCircuitDataMessage    = "No circuit data provided"
	StoreUnavailableMessage = "Database connection failed"
)

var (
	ErrNoCircuitData    = errors.New(NoCircuitDataMessage)
	ErrStoreUnavailable = errors.New(StoreUnavailableMessage)
)

// Failure classifies an error for the response envelope. Its message is the
// message of the wrapped error, unchanged.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Kind.String()
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func NewFailure(kind FailureKind, err error) error {
	if err == nil {
		return nil
	}
	return &Failure{Kind: kind, Err: err}
}

// KindOf reports the failure kind of err. Unclassified errors are reported
// with ok == false.
func KindOf(err error) (kind FailureKind, ok bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}
