package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/recordbook/recordbook/internal/apperr"
	"github.com/recordbook/recordbook/internal/records"
)

func validContact() records.ContactInput {
	desc := "met at the conference"
	return records.ContactInput{
		Name:        "Olena",
		Lastname:    "Koval",
		Email:       "olena.koval@example.com",
		Phone:       "+380(50)123-45-67",
		BornDate:    "1990-06-05",
		Description: &desc,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.KindValidation, ae.Kind)
	out := map[string]string{}
	for _, f := range ae.Fields {
		out[f.Field] = f.Reason
	}
	return out
}

func TestPhone(t *testing.T) {
	accepted := []string{
		"+1(234)567-8901",
		"+380(50)123-45-67",
		"+38050 123-45-67",
		"380501234567",
		"+380501234567 ext",
	}
	for _, p := range accepted {
		assert.True(t, Phone(p), p)
	}
	rejected := []string{
		"abc",
		"+1234",
		"phone: 380501234567",
		"+380(50)123-45-67-89-01-23",
	}
	for _, p := range rejected {
		assert.False(t, Phone(p), p)
	}
}

func TestContactValid(t *testing.T) {
	c, err := Contact(validContact())
	require.NoError(t, err)
	require.Equal(t, "Olena", c.Name)
	require.Equal(t, records.NewDate(1990, time.June, 5), c.BornDate)
	require.NotNil(t, c.Description)
	require.Zero(t, c.ID)
}

func TestContactEmptyDescriptionIsNil(t *testing.T) {
	in := validContact()
	empty := ""
	in.Description = &empty
	c, err := Contact(in)
	require.NoError(t, err)
	require.Nil(t, c.Description)
}

func TestContactReportsEachField(t *testing.T) {
	in := validContact()
	in.Name = "Al"
	in.Email = "not-an-email"
	in.Phone = "abc"
	in.BornDate = "05.06.1990"
	long := strings.Repeat("x", 251)
	in.Description = &long

	_, err := Contact(in)
	fields := fieldsOf(t, err)
	require.Equal(t, "must be at least 3 characters", fields["name"])
	require.Equal(t, "must be a valid email address", fields["email"])
	require.Contains(t, fields, "phone")
	require.Equal(t, "must be a date in YYYY-MM-DD format", fields["born_date"])
	require.Equal(t, "must be at most 250 characters", fields["description"])
	require.NotContains(t, fields, "lastname")
}

func TestContactRequiredFields(t *testing.T) {
	_, err := Contact(records.ContactInput{})
	fields := fieldsOf(t, err)
	for _, f := range []string{"name", "lastname", "email", "phone", "born_date"} {
		require.Equal(t, "field is required", fields[f], f)
	}
	require.NotContains(t, fields, "description")
}

func TestContactFutureBirthDateAccepted(t *testing.T) {
	in := validContact()
	in.BornDate = "2999-01-01"
	_, err := Contact(in)
	require.NoError(t, err)
}

func TestContactPatchOnlyChecksPresentFields(t *testing.T) {
	p, err := ContactPatch(records.ContactPatchInput{Name: records.Some("Olha")})
	require.NoError(t, err)
	require.Equal(t, records.Some("Olha"), p.Name)
	require.False(t, p.Email.Set)
	require.False(t, p.BornDate.Set)

	_, err = ContactPatch(records.ContactPatchInput{
		Phone:    records.Some("abc"),
		BornDate: records.Some("yesterday"),
	})
	fields := fieldsOf(t, err)
	require.Contains(t, fields, "phone")
	require.Contains(t, fields, "born_date")
	require.Len(t, fields, 2)
}

func TestContactPatchParsesDateAndAllowsClearingDescription(t *testing.T) {
	p, err := ContactPatch(records.ContactPatchInput{
		BornDate:    records.Some("1991-02-28"),
		Description: records.Some(""),
	})
	require.NoError(t, err)
	require.Equal(t, records.Some(records.NewDate(1991, time.February, 28)), p.BornDate)
	require.Equal(t, records.Some(""), p.Description)
}

func TestContactPatchRejectsPresentEmptyName(t *testing.T) {
	_, err := ContactPatch(records.ContactPatchInput{Name: records.Some("")})
	require.Equal(t, "must be at least 3 characters", fieldsOf(t, err)["name"])
}

func TestEmail(t *testing.T) {
	require.NoError(t, Email("olena.koval@example.com"))
	require.Equal(t, "must be a valid email address", fieldsOf(t, Email("not-an-email"))["email"])
	require.Equal(t, "field is required", fieldsOf(t, Email(""))["email"])
}

func TestNote(t *testing.T) {
	n, err := Note(records.NoteInput{Name: "groceries", Description: "milk, bread", Done: true})
	require.NoError(t, err)
	require.Equal(t, &records.Note{Name: "groceries", Description: "milk, bread", Done: true}, n)

	_, err = Note(records.NoteInput{Name: strings.Repeat("n", 51)})
	require.Equal(t, "must be at most 50 characters", fieldsOf(t, err)["name"])
}

func TestPhoneProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		digits := rapid.StringMatching(`\+?[0-9]{12,15}`).Draw(t, "digits")
		if !Phone(digits) {
			t.Fatalf("expected %q to be accepted", digits)
		}
		letters := rapid.StringMatching(`[a-zA-Z ]{12,20}`).Draw(t, "letters")
		if Phone(letters) {
			t.Fatalf("expected %q to be rejected", letters)
		}
	})
}
