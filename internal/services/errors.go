package services

import "errors"

var (
	// auth errors: both surface to clients as the same generic failure so a
	// response never reveals whether the email or the password was wrong
	ErrUnableToLogin     = errors.New("unable to login")
	ErrIncorrectPassword = errors.New("incorrect password")

	// avatar upload rejections (checked before any processing)
	ErrAvatarTooLarge   = errors.New("avatar must be 1MB or smaller")
	ErrUnsupportedImage = errors.New("please upload an image file")
	ErrImageProcessing  = errors.New("unable to process image")
)

// ValidationError reports a malformed, out-of-range, or disallowed field on
// create or update.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
