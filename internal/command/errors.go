package command

import (
	"net/http"

	"github.com/eleven-am/playback-gateway/internal/dto"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/labstack/echo/v4"
)

func statusFor(kind playback.Kind) int {
	switch kind {
	case playback.KindDeviceNotFound:
		return http.StatusNotFound
	case playback.KindInvalidPayload:
		return http.StatusBadRequest
	case playback.KindNotPaused:
		return http.StatusConflict
	case playback.KindTransportFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the command API's error body. Errors without a playback kind
// are reported as internal errors.
func fail(c echo.Context, err error) error {
	kind := playback.KindOf(err)
	return c.JSON(statusFor(kind), dto.CommandError{
		Success: false,
		Message: err.Error(),
		Kind:    string(kind),
	})
}

func ok(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, dto.CommandResponse{Success: true, Message: message})
}

func bindDevice(c echo.Context) (string, error) {
	var req dto.DeviceRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return "", playback.InvalidPayload("invalid JSON body")
		}
	}
	if req.DeviceID == "" {
		req.DeviceID = c.QueryParam("device_id")
	}
	if req.DeviceID == "" {
		return "", playback.InvalidPayload("device_id is required")
	}
	return req.DeviceID, nil
}
