package destiin

import "errors"

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation error")

// ErrMissingUpload is returned by UploadReceipt when the image or the filename is empty.
var ErrMissingUpload = &ValidationError{Message: "Missing image data or filename."}

// ValidationError reports invalid input. Message is shown to the caller as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}
