package settings

import "fmt"

const errFmt = "%s: %s"

// Error wraps Settings errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidSettings indicates if err is ErrInvalidSettings.
func IsInvalidSettings(err error) bool {
	return unwrapError(err) == ErrInvalidSettings
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
