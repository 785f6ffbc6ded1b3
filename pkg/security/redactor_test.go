package security_test

import (
	"testing"

	"github.com/mkershaw/bookpilot/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestRedactMasksAllSecrets(t *testing.T) {
	r := security.NewRedactor("555-867-5309", "jane@example.com")

	got := r.Redact(`filled phone "555-867-5309" and email "jane@example.com"`)
	assert.Equal(t, `filled phone "********" and email "********"`, got)
}

func TestRedactLongestFirst(t *testing.T) {
	// One secret is a substring of another; the longer one must be masked
	// whole rather than left partially readable.
	r := security.NewRedactor("secret", "secret-token-abc")

	got := r.Redact("header: secret-token-abc")
	assert.Equal(t, "header: ********", got)
}

func TestRedactNoSecretsPassesThrough(t *testing.T) {
	assert.Equal(t, "hello", security.NewRedactor().Redact("hello"))
	assert.Equal(t, "hello", security.NewRedactor("", "").Redact("hello"))

	var nilRedactor *security.Redactor
	assert.Equal(t, "hello", nilRedactor.Redact("hello"))
}

func TestAddRegistersMoreSecrets(t *testing.T) {
	r := security.NewRedactor("one")
	r.Add("two", "")

	got := r.Redact("one and two")
	assert.Equal(t, "******** and ********", got)
}
