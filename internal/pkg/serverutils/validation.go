package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"noet-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	userIdRegex   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	// report json names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("hexcolor_short", func(fl validator.FieldLevel) bool {
		return hexColorRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("user_id", func(fl validator.FieldLevel) bool {
		return userIdRegex.MatchString(fl.Field().String())
	})
	return v
}

// ValidateRequest runs struct tag validation and reports the first failing
// field as a validation error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return apperror.Validation("invalid request: %v", err)
	}
	return apperror.Validation("%s", describeFieldError(validationErrors[0]))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a UUID", field)
	case "hexcolor_short":
		return fmt.Sprintf("%s must be a hex color like #fff or #ffffff", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidUserId reports whether id is usable as a per-user directory name.
func ValidUserId(id string) bool {
	return userIdRegex.MatchString(id)
}
