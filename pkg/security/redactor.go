package security

import (
	"sort"
	"strings"
)

// Redactor masks sensitive values in log transcripts. Transcripts are echoed
// back through the HTTP front end and may be forwarded by the webhook relay,
// so contact PII and shared secrets must never appear in them verbatim.
type Redactor struct {
	Secrets []string
}

func NewRedactor(secrets ...string) *Redactor {
	var values []string
	for _, s := range secrets {
		if s != "" {
			values = append(values, s)
		}
	}
	return &Redactor{Secrets: values}
}

// Add registers additional values to mask.
func (r *Redactor) Add(secrets ...string) {
	for _, s := range secrets {
		if s != "" {
			r.Secrets = append(r.Secrets, s)
		}
	}
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	// Sort by length descending so longer secrets are replaced before any
	// value that happens to be a substring of another.
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "********")
	}
	return s
}
