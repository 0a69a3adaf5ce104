package domain

// Capability is the kind of generation requested.
type Capability string

const (
	CapabilityRestore Capability = "restore"
	CapabilityAnimate Capability = "animate"
)

// GenerationRequest is one user-initiated generation. Immutable once
// submitted; owned exclusively by a single orchestrator invocation.
type GenerationRequest struct {
	Image      []byte
	Capability Capability
	Prompt     string // animation only
	MotionID   string // animation only
}

// GenerationOutcome is the single terminal result of a generation request.
// Either MediaURL is set, or ErrorCode/ErrorMessage describe the failure.
type GenerationOutcome struct {
	MediaURL     string
	ErrorCode    string
	ErrorMessage string
}

// Succeeded reports whether the outcome carries media.
func (o GenerationOutcome) Succeeded() bool {
	return o.MediaURL != ""
}

// SuccessOutcome builds a terminal success.
func SuccessOutcome(mediaURL string) GenerationOutcome {
	return GenerationOutcome{MediaURL: mediaURL}
}

// FailureOutcome builds a terminal failure with a provider code and message.
func FailureOutcome(code, message string) GenerationOutcome {
	return GenerationOutcome{ErrorCode: code, ErrorMessage: message}
}
