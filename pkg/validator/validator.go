package validator

import (
	"fmt"
	"strings"

	"academic-records/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	registerCustomValidations(validate)
}

// ValidateStruct validates a struct
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// Check validates s and classifies the failure: a missing required field is
// ErrInvalidArgument, any other rule violation is ErrValidationFailed.
func Check(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidArgument, err)
	}

	messages := make([]string, 0, len(validationErrors))
	sentinel := apperror.ErrValidationFailed
	for _, fieldError := range validationErrors {
		if fieldError.Tag() == "required" {
			sentinel = apperror.ErrInvalidArgument
		}
		messages = append(messages, getErrorMessage(fieldError))
	}

	return fmt.Errorf("%w: %s", sentinel, strings.Join(messages, "; "))
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FormatValidationError formats validation errors into a readable format
func FormatValidationError(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Tag:     fieldError.Tag(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return errors
}

// getErrorMessage returns a human-readable error message for validation errors
func getErrorMessage(fieldError validator.FieldError) string {
	field := strings.ToLower(fieldError.Field())

	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fieldError.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fieldError.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fieldError.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
	case "diarydate":
		return fmt.Sprintf("%s must be a date in DD/MM/YYYY format", field)
	case "login":
		return fmt.Sprintf("%s must start with a letter and contain only letters, digits, '.' or '_' (3-49 characters)", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
