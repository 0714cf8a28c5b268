package utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors renders validator failures as field -> failed tag.
// It returns nil when err is not a validation error.
func ValidationErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	errorResponse := make(map[string]string, len(validationErrors))
	for _, ve := range validationErrors {
		errorResponse[ve.Namespace()] = ve.Tag()
	}
	return errorResponse
}
