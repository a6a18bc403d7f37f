// Package validation checks decoded request bodies against their validate
// tags and turns failures into client errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"thesis-manager/internal/security"
	"thesis-manager/pkg/apierror"
)

var messages = map[string]string{
	"required":               "is required",
	"email":                  "must be a valid email address",
	"numeric":                "must contain only digits",
	"len":                    "must be exactly %s characters long",
	"max":                    "must be no longer than %s characters",
	"oneof":                  "must be one of %s",
	"nefield":                "must differ from %s",
	"strong_password":        "must be at least 12 characters with an upper-case letter and a digit",
	"strong_password_symbol": "must be at least 12 characters with an upper-case letter, a digit and a symbol",
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return security.IsStrongPassword(fl.Field().String(), false)
	})
	_ = v.RegisterValidation("strong_password_symbol", func(fl validator.FieldLevel) bool {
		return security.IsStrongPassword(fl.Field().String(), true)
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a BAD_REQUEST APIError listing every
// failing field, or nil when s is valid.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierror.BadRequest("invalid request body", err.Error())
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	sort.Strings(problems)

	return apierror.BadRequest("validation failed", strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}

	if strings.Contains(msg, "%s") {
		param := fe.Param()
		if fe.Tag() == "nefield" {
			param = lowerFirst(param)
		}
		msg = fmt.Sprintf(msg, param)
	}
	return fe.Field() + " " + msg
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
