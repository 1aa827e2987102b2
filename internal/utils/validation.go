package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"medconnect-server/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func init() {
	// gin validates `binding` tags with its own instance; report json names there too.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Validate performs validation on a struct using its `validate` tags and
// returns a *models.ValidationError describing every rejected field.
func Validate(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return ToValidationError(err)
	}
	return nil
}

// ToValidationError converts validator errors into the domain validation
// error. Other errors are returned unchanged.
func ToValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	ve := &models.ValidationError{}
	for _, e := range errs {
		ve.Fields = append(ve.Fields, models.FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return ve
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "eqfield":
		return "must match " + e.Param()
	case "gt", "gte":
		return "must be greater than " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "datetime":
		return "must be a date formatted as " + e.Param()
	}
	return "is invalid"
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	return ToValidationError(err).Error()
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			RespondError(c, ToValidationError(err))
			return false
		}
		BadRequest(c, "Invalid request payload")
		return false
	}
	return true
}
