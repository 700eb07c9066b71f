package counter

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Service implementations.
var (
	ErrInvalidKey = errors.New("invalid key")
)

// Error wraps common Service errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidKey indicates if err is ErrInvalidKey.
func IsInvalidKey(err error) bool {
	return unwrapError(err) == ErrInvalidKey
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err,
			fmt.Sprintf(format, args...),
		),
	}
}
