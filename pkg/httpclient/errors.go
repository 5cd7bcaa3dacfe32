package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// remoteError covers the error bodies identity providers commonly return:
// OAuth style {"error","error_description"}, and {"code","msg"} or
// {"error_code","message"}.
type remoteError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e remoteError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// maps it to an AppError. Client errors keep the remote message; server
// errors are wrapped as upstream failures.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Upstream(fmt.Errorf("%s returned %d (read body: %w)", service, resp.StatusCode, err))
	}

	var body remoteError
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.text() != "" {
		msg = body.text()
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusBadRequest && body.Error == "invalid_grant":
		return apperrors.Unauthorized(msg)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(body.ErrorCode, "exists"):
		return apperrors.Conflict(msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %s: %w", service, msg, apperrors.ErrRateLimited)
	case IsClientError(resp.StatusCode):
		return apperrors.InvalidInput(msg)
	default:
		return apperrors.Upstream(fmt.Errorf("%s returned %d: %s", service, resp.StatusCode, msg))
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

// ParseTransportError wraps a failed round trip, including an open circuit,
// as an upstream failure.
func ParseTransportError(err error, service string) error {
	return apperrors.Upstream(fmt.Errorf("%s: %w", service, err))
}
