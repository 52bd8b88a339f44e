package response

import (
	"errors"
	"net/http"

	"virtual-wallet-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body: a stable machine-readable code
// plus a human-readable message.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// OK sends a 200 response with the given body. Bodies are emitted without an
// envelope: the wire contract fixes their exact shape.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RawJSON sends a 200 response with a pre-serialized JSON body. Used for
// idempotent replays, which must be byte-identical to the first response.
func RawJSON(c *gin.Context, payload []byte) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
		})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
	})
}
