// Package validation validates binder and admin payloads using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	domainerrors "github.com/listenupapp/binderkeep/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// langtag accepts BCP 47 language tags ("en", "pt-BR", "zh-Hant").
	_ = v.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})

	// slotkey rejects keys containing whitespace or the exclusion separator.
	_ = v.RegisterValidation("slotkey", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && !strings.ContainsAny(s, " \t\n|")
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	fields := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msg := friendlyMessage(e)
		fieldErrors[e.Field()] = msg
		fields = append(fields, e.Field()+" "+msg)
	}

	return domainerrors.ValidationWithDetails("validation failed: "+strings.Join(fields, "; "), fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "langtag":
		return "must be a valid language tag"
	case "slotkey":
		return "must be a non-empty key without spaces or '|'"
	case "dive":
		return "contains an invalid element"
	default:
		return "is invalid"
	}
}
