package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
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

// RespondAPIError writes err with the status and code of the *apierr.Error it carries. Anything
// else becomes an opaque 500.
func RespondAPIError(c *gin.Context, err error) {
	apiErr, ok := apierr.As(err)
	if !ok {
		apiErr = apierr.Internal(err)
	}
	status := apiErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	code := apiErr.Code
	if code == "" {
		code = apierr.CodeInternal
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: apiErr.PublicMessage(),
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
