package authsdk

import (
	"fmt"
	"net/http"
	"strconv"
)

// Error codes the service emits. The HTTP layer is the only place that maps
// internal sentinel errors onto these strings.
const (
	ErrorCodeValidation         = "validation_error"
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeEmailTaken         = "email_taken"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
	ErrorCodePayloadTooLarge    = "payload_too_large"
	ErrorCodeConflict           = "conflict"
	ErrorCodeServerError        = "server_error"
)

// APIError is the typed error the SDK returns for any non-2xx response.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Code is the machine-readable error code
	Code string

	// Description is the human-readable description
	Description string

	// Fields holds field-level validation failures, when present
	Fields map[string]string

	// RetryAfter is the parsed Retry-After header in seconds, when present
	RetryAfter int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsRateLimited reports whether the server throttled the request.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// apiErrorFromResponse builds an APIError from a decoded error body. The
// body may be empty (e.g. bare 401s), in which case only the status is set.
func apiErrorFromResponse(resp *http.Response, body ErrorResponse) *APIError {
	apiErr := &APIError{
		StatusCode:  resp.StatusCode,
		Code:        body.Error,
		Description: body.ErrorDescription,
		Fields:      body.Fields,
	}
	if apiErr.Code == "" {
		apiErr.Code = ErrorCodeServerError
		apiErr.Description = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			apiErr.RetryAfter = secs
		}
	}
	return apiErr
}
