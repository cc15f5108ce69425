package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"vidtube/internal/domain"
)

// bindError convierte un error de binding de gin en un ValidationError con
// un detalle legible por campo.
func bindError(err error) *domain.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validation("Invalid request body")
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("The %s field is required.", field))
		case "email":
			details = append(details, fmt.Sprintf("The %s must be a valid email address.", field))
		case "min":
			details = append(details, fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param()))
		default:
			details = append(details, fmt.Sprintf("The %s field is invalid.", field))
		}
	}
	return domain.Validation("Invalid request body", details...)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
