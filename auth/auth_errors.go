package auth

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-haloinfinite/token"
)

var ErrPreconditionNotMet = errors.New("precondition not met")

// PreconditionError is returned before any request is made when a token the
// operation depends on is unset or expired. Acquiring Token again fixes it.
type PreconditionError struct {
	Token token.Slot
	Err   error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPreconditionNotMet, e.Err)
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionNotMet
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Guard turns a failed token read into a *PreconditionError naming the slot.
// Errors that are not token read failures are returned unchanged.
func Guard(err error) error {
	if err == nil {
		return nil
	}
	var tokenErr *token.Error
	if !errors.As(err, &tokenErr) {
		return err
	}
	return &PreconditionError{Token: tokenErr.Slot, Err: err}
}
