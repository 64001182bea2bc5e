package shared

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHTTPHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    *echo.HTTPError
		status int
		code   string
	}{
		{"bad request", BadRequest("missing_device_id", "device id is required"), http.StatusBadRequest, "missing_device_id"},
		{"not found", NotFound("device_not_found", "device is not connected"), http.StatusNotFound, "device_not_found"},
		{"conflict", Conflict("not_paused", "playback is not paused"), http.StatusConflict, "not_paused"},
		{"too many requests", TooManyRequests("rate_limit_exceeded", "too many requests"), http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"internal", InternalError("list_failed", "failed to load dialogue"), http.StatusInternalServerError, "list_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.status {
				t.Errorf("status = %d, want %d", tt.err.Code, tt.status)
			}
			apiErr, ok := tt.err.Message.(*APIError)
			if !ok {
				t.Fatalf("message is %T, want *APIError", tt.err.Message)
			}
			if apiErr.Code != tt.code {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.code)
			}
			if apiErr.Details != nil {
				t.Errorf("details = %v, want nil", apiErr.Details)
			}
		})
	}
}

func TestInvalidParam(t *testing.T) {
	err := InvalidParam("invalid_limit", "limit must be a positive integer", "limit", "-3")
	if err.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", err.Code)
	}
	apiErr := err.Message.(*APIError)
	details, ok := apiErr.Details.(map[string]string)
	if !ok {
		t.Fatalf("details is %T", apiErr.Details)
	}
	if details["param"] != "limit" || details["value"] != "-3" {
		t.Errorf("details = %v", details)
	}
}
