package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.co"))

	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("@example.com"))
}

func TestValidateName(t *testing.T) {
	assert.True(t, ValidateName("Acme Traders"))
	assert.True(t, ValidateName("  Al  "), "surrounding whitespace does not count")

	assert.False(t, ValidateName(""))
	assert.False(t, ValidateName("x"))
	assert.False(t, ValidateName(strings.Repeat("a", 101)))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", SanitizeEmail("  User@Example.COM "))
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.False(t, errs.HasErrors())
	assert.Empty(t, errs.Error())

	errs.Add("email", "invalid email address")
	errs.Add("name", "too short")

	assert.True(t, errs.HasErrors())
	assert.Equal(t, "email: invalid email address; name: too short", errs.Error())
}
