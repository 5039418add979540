// AngelaMos | 2026
// form.go

package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"

	"github.com/pierkoo/flasktaskr/internal/session"
)

var decoder = form.NewDecoder()

// DecodeForm fills dst from the request's url-encoded body.
func DecodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}

	return nil
}

// NewValidator reports field errors under the field's form name instead of
// its Go name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldErrors maps a form field name to its messages, in the order the
// validator reported them.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Flash queues every message as an error notice. Forms show field errors
// only this way.
func (fe FieldErrors) Flash(s *session.Session, fields []Field) {
	for _, msg := range fe.Messages(fields) {
		s.FlashCategory(msg, session.CategoryError)
	}
}

// Messages returns the errors as "Error in the <label> field - <message>"
// lines, walking fields in the given order.
func (fe FieldErrors) Messages(fields []Field) []string {
	var out []string
	for _, f := range fields {
		for _, msg := range fe[f.Name] {
			out = append(out, fmt.Sprintf("Error in the %s field - %s", f.Label, msg))
		}
	}
	return out
}

// Field names a form input and its human label.
type Field struct {
	Name  string
	Label string
}

// MessageFunc turns one failed validation into the text shown to the user.
// Returning "" falls back to DefaultMessage.
type MessageFunc func(validator.FieldError) string

// CollectErrors converts a validator error into FieldErrors. Errors that are
// not validation errors are returned unchanged.
func CollectErrors(err error, custom MessageFunc) (FieldErrors, error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fe := make(FieldErrors)
	for _, e := range verrs {
		msg := ""
		if custom != nil {
			msg = custom(e)
		}
		if msg == "" {
			msg = DefaultMessage(e)
		}
		fe.Add(e.Field(), msg)
	}

	return fe, nil
}

const RequiredMessage = "This field is required."

func DefaultMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return RequiredMessage
	case "email":
		return "Invalid email address."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", e.Param())
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", e.Param())
	case "eqfield":
		return "Passwords must match."
	case "datetime":
		return "Not a valid date value."
	case "number", "numeric":
		return "Not a valid integer value."
	default:
		return "Invalid value."
	}
}
