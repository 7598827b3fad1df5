package documents

import (
	"errors"
	"fmt"

	"github.com/celerix-dev/firmdesk/pkg/schema"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidTransition is returned for any transition outside the lifecycle graph.
	ErrInvalidTransition = errors.New("invalid document transition")
	// ErrSignerRequired is returned when Sign is called without a signer identity.
	ErrSignerRequired = errors.New("signer identity required")
	// ErrInvalidDocument is returned by Create for documents missing a client or title.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnknownTransition is returned by ParseTransition for names outside the lifecycle.
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrDuplicateID is returned by Create when the id is already taken.
	ErrDuplicateID = errors.New("document id already exists")
)

// TransitionError describes a rejected lifecycle transition.
// It matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	DocumentID string
	From       schema.DocumentStatus
	Transition Transition
}

func (e *TransitionError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("cannot %s a %s document", e.Transition, e.From)
	}
	return fmt.Sprintf("cannot %s document %s: status is %s", e.Transition, e.DocumentID, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
