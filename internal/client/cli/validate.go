package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/plate"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator knowing the "plate" tag (NNNN/YY/L).
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		return plate.Valid(fl.Field().String())
	})
	return v
}

// describeValidation turns validator errors into one line per field.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		lines = append(lines, fmt.Sprintf("- %s: %s", fe.Field(), ruleMessage(fe)))
	}
	return strings.Join(lines, "\n")
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "champ obligatoire"
	case "email":
		return "adresse email invalide"
	case "oneof":
		return "valeur attendue parmi: " + fe.Param()
	case "plate":
		return "format attendu NNNN/AA/L, par exemple 0042/26/K"
	default:
		return "valeur invalide (" + fe.Tag() + ")"
	}
}
