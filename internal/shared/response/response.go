package response

import (
	"errors"

	"go-payledger/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

type ApiEnvelope struct {
	Ok    bool `json:"ok"`
	Data  any  `json:"data,omitempty"`
	Error any  `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, ApiEnvelope{
		Ok:    true,
		Data:  data,
		Error: nil,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details interface{}) {
	c.JSON(status, ApiEnvelope{
		Ok:   false,
		Data: nil,
		Error: map[string]interface{}{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}

// FromError renders any error, unwrapping AppError codes, statuses and
// field details; everything else becomes a generic 500.
func FromError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		var details interface{}
		if len(appErr.Fields) > 0 {
			details = appErr.Fields
		}
		Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, details)
		return
	}

	e := apperror.ErrInternal
	Error(c, e.HTTPStatus, e.Code, e.Message, nil)
}
