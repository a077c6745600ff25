package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cesargomez89/shamzam/internal/domain"
)

// ErrNotObject is returned when a request body is not a JSON object.
var ErrNotObject = errors.New("body is not a JSON object")

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Kind    domain.Kind `json:"-"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// KindOf collapses a set of field errors into one kind. Missing fields win
// over type errors, which are only reported once everything is present.
func KindOf(errs []ValidationError) domain.Kind {
	if len(errs) == 0 {
		return domain.KindUnknown
	}
	for _, e := range errs {
		if e.Kind == domain.KindMissingField {
			return domain.KindMissingField
		}
	}
	return domain.KindInvalidType
}

// decodeObject parses body as a single JSON object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	return obj, nil
}

// isFalsy reports whether raw is absent or one of null, false, 0, "", [] or {}.
func isFalsy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	}
	return false
}

// stringField validates a required text field. The value is returned only
// when there are no errors.
func stringField(name string, raw json.RawMessage) (string, *ValidationError) {
	if isFalsy(raw) {
		return "", &ValidationError{Field: name, Message: "is required", Kind: domain.KindMissingField}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Field: name, Message: "must be a string", Kind: domain.KindInvalidType}
	}
	return s, nil
}
