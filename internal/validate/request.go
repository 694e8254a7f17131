package validate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	structValidator *validator.Validate
	structOnce      sync.Once
)

// validatorInstance registers the custom tags once: namespace, ghtoken,
// semver and email_like. Empty values pass; use "required" to demand them.
func validatorInstance() *validator.Validate {
	structOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		register := func(tag string, pred func(string) bool) {
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				s := fl.Field().String()
				return s == "" || pred(s)
			})
		}
		register("namespace", IsNamespace)
		register("ghtoken", IsGitHubToken)
		register("semver", IsVersion)
		register("email_like", IsEmail)
		structValidator = v
	})
	return structValidator
}

// Request validates a struct using its `validate` tags and returns Errors
// describing every rejected field, or nil.
func Request(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &Error{
			Field:  fe.Field(),
			Value:  fmt.Sprintf("%v", fe.Value()),
			Reason: reasonFor(fe),
		})
	}
	return out
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "namespace":
		return "only letters, digits, dashes and underscores are allowed"
	case "ghtoken":
		return "expected 40 lowercase hex characters"
	case "semver":
		return "expected a semantic version such as 1.0.0"
	case "email_like":
		return "expected an email address"
	default:
		msg := fmt.Sprintf("validation failed on '%s' tag", fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (param: %s)", fe.Param())
		}
		return msg
	}
}
