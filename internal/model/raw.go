package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawDocument is one decoded JSON-LD job posting. Nothing in it is
// guaranteed: any key may be missing, null or of an unexpected type.
type RawDocument map[string]any

// ParseRawDocument decodes a staged raw file. Numbers are kept as
// json.Number so postal codes and ids survive untouched. Valid JSON whose
// root is not an object decodes to an empty document, which maps to a
// record with every section absent.
func ParseRawDocument(b []byte) (RawDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode raw document: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode raw document: trailing data")
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return RawDocument{}, nil
	}
	return RawDocument(obj), nil
}
