package analytics

import (
	"strings"
)

// DefaultForbiddenMarkers are Korean particles that show up when the model
// answers in prose instead of SQL.
var DefaultForbiddenMarkers = []string{"이", "를"}

// Validator is a shape check on generated text. It filters obvious prose;
// the read-only transaction on the executor is what keeps writes out.
type Validator struct {
	markers []string
}

func NewValidator(markers []string) *Validator {
	if markers == nil {
		markers = DefaultForbiddenMarkers
	}
	return &Validator{markers: markers}
}

func (v *Validator) Validate(query string) error {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return &RejectedQueryError{Reason: "query does not start with SELECT", Query: query}
	}
	for _, m := range v.markers {
		if m != "" && strings.Contains(query, m) {
			return &RejectedQueryError{Reason: "query contains natural-language marker " + m, Query: query}
		}
	}
	return nil
}
