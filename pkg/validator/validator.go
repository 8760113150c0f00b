package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/yusufsyaifudin/pnscred/pkg/i18n"
)

var (
	v *validator.Validate
)

func init() {
	v = validator.New()

	// field errors are rendered with the english catalog, regardless of active locale
	trans, _ := i18n.Universal().GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Errorf("validator: register translations: %w", err))
	}
}

func Validate(i interface{}) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}

	return humanize(v.Struct(i))
}

// Var validates a single value against tag.
func Var(field interface{}, tag string) error {
	return humanize(v.Var(field, tag))
}

func humanize(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	trans, _ := i18n.Universal().GetTranslator("en")
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(trans))
	}

	return &Error{Fields: fieldErrs, msg: strings.Join(msgs, "; ")}
}

// Error keeps the original field errors while printing translated messages.
type Error struct {
	Fields validator.ValidationErrors
	msg    string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.Fields
}
