package repair

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const snippetLen = 200

// MalformedResponseError is returned when neither repair tier yields valid JSON.
type MalformedResponseError struct {
	Err     error
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response after recovery attempt: %v (snippet: %s)", e.Err, e.Snippet)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsMalformedResponse reports whether err carries a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var m *MalformedResponseError
	return errors.As(err, &m)
}

// Normalizer turns one raw completion into a JSON array text.
type Normalizer struct {
	Base     []Rule
	Extended []Rule
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Base:     BaseRules(),
		Extended: ExtendedRules(),
	}
}

var defaultNormalizer = NewNormalizer()

// Normalize repairs raw with the default rule tiers.
func Normalize(raw string) (string, error) {
	return defaultNormalizer.Normalize(raw)
}

// Normalize returns valid JSON whose top level is an array.
// Text that already is such an array is returned unchanged, and a valid
// object is only wrapped. The '#' and '//' comment stripping, which also cuts
// string values, therefore only touches completions that are not valid JSON.
func (n *Normalizer) Normalize(raw string) (string, error) {
	trimmed := trimFences(raw)
	if json.Valid([]byte(trimmed)) {
		switch {
		case strings.HasPrefix(trimmed, "["):
			return trimmed, nil
		case strings.HasPrefix(trimmed, "{"):
			return wrapArray(trimmed), nil
		}
	}

	cleaned := strings.TrimSpace(Apply(raw, n.Base))
	err := checkJSON(cleaned)
	if err == nil {
		return cleaned, nil
	}
	zap.S().Debugf("json format error: %v, cleaned response: %s", err, snippet(cleaned))

	fixed := strings.TrimSpace(Apply(cleaned, n.Extended))
	if err := checkJSON(fixed); err != nil {
		zap.S().Errorf("invalid json format after recovery attempt: %v", err)
		return "", &MalformedResponseError{Err: err, Snippet: snippet(fixed)}
	}
	zap.S().Info("json format error fixed by extended rules")
	return fixed, nil
}

func checkJSON(s string) error {
	var v any
	return json.Unmarshal([]byte(s), &v)
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) > snippetLen {
		r = r[:snippetLen]
	}
	return string(r)
}
