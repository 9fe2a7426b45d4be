package errors

import (
	"errors"
	"fmt"
)

// Common error types shared across the token chain packages
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrDecode        = errors.New("decode response")
	ErrEncode        = errors.New("encode request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
