package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"thingapi/internal/model"
)

// abortError writes the uniform error body used for every failure status.
func abortError(c *gin.Context, status int, description string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{
		Code:        status,
		Name:        http.StatusText(status),
		Description: description,
	})
}

// bindingErrorDescription turns a gin binding failure into a message naming
// the offending field and constraint.
func bindingErrorDescription(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("field '%s' failed '%s=%s' validation", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("field '%s' failed '%s' validation", fe.Field(), fe.Tag())
	}
	return "Invalid request body"
}
