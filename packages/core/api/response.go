package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pelada-api/packages/core/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const InvalidDataMessage = "The given data was invalid."

func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, status int, message string, errs interface{}) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// FieldErrors answers 422 with a field keyed error map.
func FieldErrors(c *gin.Context, fields map[string][]string) {
	Fail(c, http.StatusUnprocessableEntity, InvalidDataMessage, fields)
}

// BindJSON decodes the body into req. Constraint violations answer 422 with
// the failing fields, a malformed body answers 400.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		FieldErrors(c, ValidationFields(verrs))
		return
	}
	Fail(c, http.StatusBadRequest, "Invalid request body", nil)
}

func ValidationFields(verrs validator.ValidationErrors) map[string][]string {
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], fieldMessage(name, fe))
	}
	return fields
}

func fieldMessage(name string, fe validator.FieldError) string {
	label := strings.ReplaceAll(name, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("The %s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("The %s may not be greater than %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", label, fe.Param())
	case "len":
		return fmt.Sprintf("The %s must be %s characters.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "datetime":
		return fmt.Sprintf("The %s does not match the format %s.", label, fe.Param())
	case "notpast":
		return fmt.Sprintf("The %s must be a date after or equal to today.", label)
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}
