package apperror

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError converts gin binding failures into an AppError with a
// complete field→message map, mirroring how domain validation reports.
func MapValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string, len(errs))
		for _, e := range errs {
			switch e.Tag() {
			case "required":
				fields[e.Field()] = formatFieldName(e.Field()) + " is required"
			default:
				fields[e.Field()] = formatFieldName(e.Field()) + " is invalid"
			}
		}
		return ErrInvalidInput.WithFields(fields)
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
