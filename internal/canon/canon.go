// Package canon provides the canonical JSON encoding every commitment in the
// protocol is computed over. Two parties that canonicalize the same value must
// produce identical bytes, so the rules are fixed: struct-declared field
// order, no insignificant whitespace, UTF-8 output, and minimal escaping with
// HTML-safe escaping disabled (the program-hash placeholder contains angle
// brackets and must round-trip verbatim).
package canon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Marshal encodes v as canonical JSON.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("canonical encode: %w", err)
	}
	// Encoder terminates every value with a newline; the canonical form
	// has none.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal decodes data into v, rejecting unknown fields and trailing
// content. It accepts any JSON whitespace on input: canonicalization
// constrains what we emit, not what we can read back.
func Unmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("canonical decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("canonical decode: trailing data after value")
	}
	return nil
}
