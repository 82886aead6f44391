// Package codec converts the whole storefront document to and from its JSON form.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"videosplus/storefront/internal/domain"
)

// MalformedDocumentError reports stored bytes that do not decode to a Document.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed document: %s: %v", e.Reason, e.Err)
	}
	return "malformed document: " + e.Reason
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// Warning describes stored content that did not survive decoding. Field is the
// dotted path of the value.
type Warning struct {
	Field   string
	Message string
}

// Decode parses raw into a normalized Document.
func Decode(raw []byte) (*domain.Document, error) {
	doc, _, err := DecodeWithWarnings(raw)
	return doc, err
}

// DecodeWithWarnings is Decode that also reports the values it had to drop. Only
// input that is not a JSON object is malformed; a value of the wrong type inside a
// valid object is left at its zero value and reported, and so is the first field
// the model does not know, since neither is written back on the next store.
func DecodeWithWarnings(raw []byte) (*domain.Document, []Warning, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil, &MalformedDocumentError{Reason: "empty input"}
	}
	if trimmed[0] != '{' {
		return nil, nil, &MalformedDocumentError{Reason: "top-level value is not an object"}
	}

	var (
		doc      domain.Document
		warnings []Warning
		typeErr  *json.UnmarshalTypeError
	)
	err := json.Unmarshal(trimmed, &doc)
	switch {
	case err == nil:
	case errors.As(err, &typeErr):
		// Unmarshal keeps going after a type mismatch, so doc holds everything else.
		warnings = append(warnings, Warning{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("JSON %s does not fit %s, value dropped", typeErr.Value, typeErr.Type),
		})
	default:
		return nil, nil, &MalformedDocumentError{Reason: "invalid JSON", Err: err}
	}
	if field, ok := firstUnknownField(trimmed); ok {
		warnings = append(warnings, Warning{Field: field, Message: "unknown field, dropped on the next write"})
	}
	doc.Normalize()
	return &doc, warnings, nil
}

const unknownFieldPrefix = "json: unknown field "

func firstUnknownField(raw []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var doc domain.Document
	err := dec.Decode(&doc)
	if err == nil || !strings.HasPrefix(err.Error(), unknownFieldPrefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(err.Error(), unknownFieldPrefix), `"`), true
}

// Encode renders doc as indented JSON. Collections are always written as arrays,
// so readers of the stored object never see null where a list is expected.
func Encode(doc *domain.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("encode document: nil document")
	}
	out := *doc
	if out.SiteConfig != nil {
		cfg := *out.SiteConfig
		out.SiteConfig = &cfg
	}
	out.Normalize()
	raw, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}
