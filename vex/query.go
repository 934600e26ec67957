package vex

import (
	"errors"
	"fmt"
	"strings"
)

// Query fields understood by the index
const (
	FieldAffected = "affected"
	FieldCve      = "cve"
	FieldAdvisory = "advisory"
	FieldSeverity = "severity"
)

var (
	// ErrUnterminatedQuote is returned for a phrase missing its closing quote
	ErrUnterminatedQuote = errors.New("unterminated quoted phrase")
	// ErrUnknownField is returned for a term scoped to a field the index does not know
	ErrUnknownField = errors.New("unknown query field")
)

// Term is one field-scoped predicate. An empty Field matches the advisory, any
// CVE id or a substring of the title.
type Term struct {
	Field string
	Value string
}

// AffectedQuery builds the query matching documents that list purl as affected
func AffectedQuery(purl string) string {
	return FieldAffected + `:"` + escapePhrase(purl) + `"`
}

func escapePhrase(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// ParseQuery splits a query into terms. Terms are separated by whitespace and take
// the form field:"exact phrase", field:value or value. All terms must match.
func ParseQuery(q string) ([]Term, error) {
	var terms []Term
	i := 0
	for i < len(q) {
		if isSpace(q[i]) {
			i++
			continue
		}

		start := i
		for i < len(q) && !isSpace(q[i]) && q[i] != ':' && q[i] != '"' {
			i++
		}

		term := Term{}
		if i < len(q) && q[i] == ':' {
			term.Field = strings.ToLower(q[start:i])
			if !knownField(term.Field) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownField, term.Field)
			}
			i++
		} else {
			i = start
		}

		value, next, err := readValue(q, i)
		if err != nil {
			return nil, err
		}
		term.Value = value
		i = next
		terms = append(terms, term)
	}
	return terms, nil
}

func readValue(q string, i int) (string, int, error) {
	if i < len(q) && q[i] == '"' {
		var b strings.Builder
		for i++; i < len(q); i++ {
			switch q[i] {
			case '\\':
				if i+1 < len(q) {
					i++
					b.WriteByte(q[i])
				}
			case '"':
				return b.String(), i + 1, nil
			default:
				b.WriteByte(q[i])
			}
		}
		return "", i, ErrUnterminatedQuote
	}

	start := i
	for i < len(q) && !isSpace(q[i]) {
		i++
	}
	return q[start:i], i, nil
}

func knownField(f string) bool {
	switch f {
	case FieldAffected, FieldCve, FieldAdvisory, FieldSeverity:
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
