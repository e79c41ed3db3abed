package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps the error taxonomy onto HTTP status codes:
// not_found -> 404, validation -> 400, external -> 502, anything
// else -> 500.
func RespondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	code := "internal_error"
	status := http.StatusInternalServerError
	if errors.As(err, &ae) {
		code = ae.Code
		switch ae.Kind {
		case apierr.KindNotFound:
			status = http.StatusNotFound
		case apierr.KindValidation:
			status = http.StatusBadRequest
		case apierr.KindExternal:
			status = http.StatusBadGateway
		}
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
