package unify

import (
	"encoding/json"
	"strconv"
	"strings"

	"fotomagic/internal/domain"
)

// taskEnvelope is the provider's response shape for both task submission and
// task polling. Error details live either directly on data or nested under
// data.error depending on the model family.
type taskEnvelope struct {
	Code int      `json:"code"`
	Data taskData `json:"data"`
}

type taskData struct {
	TaskID  string     `json:"task_id"`
	Status  string     `json:"status"`
	Code    flexString `json:"code"`
	Message string     `json:"message"`
	Error   *taskError `json:"error"`
	Output  taskOutput `json:"output"`
}

type taskError struct {
	Code    flexString `json:"code"`
	Message string     `json:"message"`
}

type taskOutput struct {
	ImageURL mediaURL `json:"image_url"`
	VideoURL mediaURL `json:"video_url"`
}

func (o taskOutput) url() string {
	if u := o.ImageURL.first(); u != "" {
		return u
	}
	return o.VideoURL.first()
}

// mediaURL accepts both a bare URL string and a list of URLs; the provider
// uses either depending on the model.
type mediaURL []string

func (m *mediaURL) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*m = mediaURL{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*m = mediaURL(many)
	return nil
}

func (m mediaURL) first() string {
	if len(m) == 0 {
		return ""
	}
	return m[0]
}

// flexString tolerates the provider sending numeric or string codes.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(strconv.Itoa(n))
	return nil
}

// remoteError builds the structured provider failure for this envelope.
// httpStatus carries the transport status when the body held no code.
func (e *taskEnvelope) remoteError(httpStatus int) error {
	code := string(e.Data.Code)
	message := e.Data.Message
	if e.Data.Error != nil {
		if code == "" {
			code = string(e.Data.Error.Code)
		}
		if message == "" {
			message = e.Data.Error.Message
		}
	}
	if code == "" && httpStatus != 0 {
		code = strconv.Itoa(httpStatus)
	}
	return &domain.RemoteError{
		Code:       code,
		Message:    message,
		Validation: isValidationFailure(code, message, httpStatus),
	}
}

// isValidationFailure classifies provider rejections of the input shape,
// which are the only retryable failures (spec: aspect-ratio rejections).
func isValidationFailure(code, message string, httpStatus int) bool {
	lowered := strings.ToLower(code + " " + message)
	for _, marker := range []string{"aspect", "ratio", "validation", "invalid_input", "unsupported image"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return httpStatus == 400 || httpStatus == 422
}
