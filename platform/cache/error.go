package cache

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Cache configuration.
var (
	ErrInvalidStrategy = errors.New("invalid strategy")
)

// Error wraps common Cache errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidStrategy checks if err is ErrInvalidStrategy.
func IsInvalidStrategy(err error) bool {
	return unwrapError(err) == ErrInvalidStrategy
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
