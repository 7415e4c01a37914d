// Package forms validates user input before it reaches the backend
// gateway. A form with violations never causes a network call.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report violations under the wire field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("form")
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// RegisterForm is the registration input checked before any request.
type RegisterForm struct {
	Name            string `form:"name" validate:"required"`
	Email           string `form:"email" validate:"required,email"`
	Number          string `form:"number" validate:"required,len=10,numeric"`
	Gender          string `form:"gender" validate:"required,oneof=male female other"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// EditForm is the roster edit input. Email is shown but not editable, so
// it is not part of the form.
type EditForm struct {
	Name   string `form:"name" validate:"required"`
	Number string `form:"number" validate:"required,len=10,numeric"`
	Gender string `form:"gender" validate:"required,oneof=male female other"`
}

// Check validates form and returns one message per violating field,
// keyed by wire field name. A nil map means the form is clean.
func Check(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"form": err.Error()}
	}

	msgs := make(map[string]string, len(ve))
	for _, fe := range ve {
		msgs[fe.Field()] = fieldError(fe)
	}
	return msgs
}

// fieldError converts a single violation into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return field + " must contain only digits"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
