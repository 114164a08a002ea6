package media

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrPollTimeout is returned when a video operation does not complete within
// the configured poll deadline.
var ErrPollTimeout = errors.New("video generation timed out")

// EntitlementError marks a generation failure caused by missing elevated
// access: the service reported the requested model as unavailable to the
// current key, or the request asked for an elevated tier without the flag.
// Callers react by revoking the cached access flag and prompting the user to
// re-select a key.
type EntitlementError struct {
	Model string
	Err   error
}

func (e *EntitlementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("elevated access required for %s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("elevated access required for %s", e.Model)
}

func (e *EntitlementError) Unwrap() error {
	return e.Err
}

// IsEntitlementError reports whether err (anywhere in its chain) is an
// EntitlementError.
func IsEntitlementError(err error) bool {
	var entErr *EntitlementError
	return errors.As(err, &entErr)
}

// classifyGenerationError wraps entitlement refusals from the API into
// EntitlementError and passes everything else through. Refusals are detected
// structurally from the API error code where possible; the message check
// covers transports that lose the typed error.
func classifyGenerationError(model string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403, 404:
			return &EntitlementError{Model: model, Err: err}
		}
		return err
	}

	if strings.Contains(strings.ToLower(err.Error()), "requested entity was not found") {
		return &EntitlementError{Model: model, Err: err}
	}
	return err
}
