package errorutil

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs struct tag validation and folds the failures into a single
// VALIDATION_FAILED error whose details map field name to message.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("invalid payload", nil)
	}

	messages := make([]string, 0, len(fieldErrs))
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		param := fe.Param()

		var msg string
		switch fe.Tag() {
		case "required":
			msg = field + " is required"
		case "min":
			msg = field + " must be at least " + param
		case "max":
			msg = field + " must be at most " + param
		case "email":
			msg = field + " must be a valid email"
		case "oneof":
			msg = field + " must be one of: " + param
		case "datetime":
			msg = field + " must match layout " + param
		case "uuid":
			msg = field + " must be a valid UUID"
		default:
			msg = field + " is invalid"
		}
		messages = append(messages, msg)
		details[field] = msg
	}

	return NewValidationError(strings.Join(messages, ", "), details)
}
