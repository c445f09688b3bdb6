package forms

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	mobilePattern = regexp.MustCompile(`^\d{10}$`)
)

// Validator returns the shared validator with the form tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return mobilePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
	})
	return validate
}

// StrongPassword requires at least six characters with a lowercase letter,
// an uppercase letter and a digit.
func StrongPassword(pw string) bool {
	if len([]rune(pw)) < 6 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// FieldError is the first rule a submitted form broke, with the message shown
// next to the form.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// messages maps "Field.tag" (or "Field" for any tag) to a user-facing message.
type messages map[string]string

// firstError runs the struct rules and converts the first failure, in struct
// field order, into a FieldError.
func firstError(form any, msgs messages) error {
	err := Validator().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := msgs[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg, ok = msgs[fe.Field()]
	}
	if !ok {
		msg = "Invalid " + strings.ToLower(fe.Field())
	}
	return &FieldError{Field: fe.Field(), Message: msg}
}
