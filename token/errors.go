package token

import (
	"errors"
	"fmt"
)

var (
	ErrTokenMissing  = errors.New("token missing")
	ErrTokenExpired  = errors.New("token expired")
	ErrMissingClaims = errors.New("token has no xuid claim")
	ErrUnknownSlot   = errors.New("unknown token slot")
)

// Error reports which slot a read failed on. Err is one of the sentinels above.
type Error struct {
	Slot Slot
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Slot, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
