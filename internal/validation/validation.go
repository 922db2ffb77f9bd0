// Package validation checks candidate records before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/recordbook/recordbook/internal/apperr"
	"github.com/recordbook/recordbook/internal/records"
)

// PhonePattern matches a loose international number: optional "+", a 1-3
// digit country group, an optionally parenthesised 2-3 digit area group and
// three more 2-3 digit groups. It is anchored at the start only, so trailing
// characters after a valid prefix are accepted.
var PhonePattern = regexp.MustCompile(`^\+?\d{1,3}\(?\d{2,3}\)?\s?(\d{2,3}-?){2}\d{2,3}`)

const invalidInput = "Invalid input data"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return PhonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Phone reports whether s is accepted as a contact phone number.
func Phone(s string) bool {
	return validate.Var(s, "min=12,max=20,phone") == nil
}

// Email checks a standalone email value, such as a search term.
func Email(s string) error {
	if err := validate.Var(s, "required,max=254,email"); err != nil {
		return apperr.Validation(invalidInput, fieldErrors(err, "email")...)
	}
	return nil
}

// Contact validates a create request and converts it into a storable record.
func Contact(in records.ContactInput) (*records.Contact, error) {
	if err := validate.Struct(in); err != nil {
		return nil, toAppError(err, "")
	}
	born, err := records.ParseDate(in.BornDate)
	if err != nil {
		return nil, apperr.InvalidField("born_date", reasonFor("datetime", ""))
	}
	c := &records.Contact{
		Name:     in.Name,
		Lastname: in.Lastname,
		Email:    in.Email,
		Phone:    in.Phone,
		BornDate: born,
	}
	if in.Description != nil && *in.Description != "" {
		d := *in.Description
		c.Description = &d
	}
	return c, nil
}

// patch rules mirror the ContactInput tags without "required": a field that
// is present must satisfy the create-time constraint.
var patchRules = []struct {
	field string
	rule  string
	get   func(records.ContactPatchInput) records.Optional[string]
}{
	{"name", "min=3,max=50", func(p records.ContactPatchInput) records.Optional[string] { return p.Name }},
	{"lastname", "min=3,max=50", func(p records.ContactPatchInput) records.Optional[string] { return p.Lastname }},
	{"email", "max=254,email", func(p records.ContactPatchInput) records.Optional[string] { return p.Email }},
	{"phone", "min=12,max=20,phone", func(p records.ContactPatchInput) records.Optional[string] { return p.Phone }},
	{"born_date", "datetime=2006-01-02", func(p records.ContactPatchInput) records.Optional[string] { return p.BornDate }},
	{"description", "max=250", func(p records.ContactPatchInput) records.Optional[string] { return p.Description }},
}

// ContactPatch validates every present field of a merge-update.
func ContactPatch(in records.ContactPatchInput) (records.ContactPatch, error) {
	var fields []apperr.FieldError
	for _, r := range patchRules {
		v, ok := r.get(in).Get()
		if !ok {
			continue
		}
		if err := validate.Var(v, r.rule); err != nil {
			fields = append(fields, fieldErrors(err, r.field)...)
		}
	}
	if len(fields) > 0 {
		return records.ContactPatch{}, apperr.Validation(invalidInput, fields...)
	}

	out := records.ContactPatch{
		Name:        in.Name,
		Lastname:    in.Lastname,
		Email:       in.Email,
		Phone:       in.Phone,
		Description: in.Description,
	}
	if s, ok := in.BornDate.Get(); ok {
		d, err := records.ParseDate(s)
		if err != nil {
			return records.ContactPatch{}, apperr.InvalidField("born_date", reasonFor("datetime", ""))
		}
		out.BornDate = records.Some(d)
	}
	return out, nil
}

// Note validates a note create request.
func Note(in records.NoteInput) (*records.Note, error) {
	if err := validate.Struct(in); err != nil {
		return nil, toAppError(err, "")
	}
	return &records.Note{Name: in.Name, Description: in.Description, Done: in.Done}, nil
}

func toAppError(err error, field string) error {
	return apperr.Validation(invalidInput, fieldErrors(err, field)...)
}

func fieldErrors(err error, field string) []apperr.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.FieldError{{Field: field, Reason: err.Error()}}
	}
	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		out = append(out, apperr.FieldError{Field: name, Reason: reasonFor(fe.Tag(), fe.Param())})
	}
	return out
}

func reasonFor(tag, param string) string {
	switch tag {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	case "max":
		return fmt.Sprintf("must be at most %s characters", param)
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	}
	return "failed " + tag + " check"
}
