package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTranscodeFailed = errors.New("source image cannot be decoded")
	ErrUploadFailed    = errors.New("media upload failed")
	ErrPollTimeout     = errors.New("payment watch deadline elapsed")
)

// RemoteError is a failure reported by the generation provider. Validation
// failures (rejected input shape, typically aspect ratio) are the only kind
// the orchestrator may recover from by re-transcoding.
type RemoteError struct {
	Code       string
	Message    string
	Validation bool
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("provider error: %s", e.Message)
	}
	return fmt.Sprintf("provider error %s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is a provider validation rejection.
func IsValidationError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Validation
}

// RemoteErrorParts extracts the provider code and message from err, falling
// back to a generic code when err is not a RemoteError.
func RemoteErrorParts(err error) (code, message string) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code, re.Message
	}
	return "internal", err.Error()
}
