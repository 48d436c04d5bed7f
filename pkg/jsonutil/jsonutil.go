// Package jsonutil wraps github.com/go-json-experiment/json so the rest of
// the module encodes reports and API payloads one way.
//
// Usage:
//
//	data, err := jsonutil.MarshalIndent(report, "", "  ")
//	err = jsonutil.Write(w, report, "  ")
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses data into v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v with map keys sorted.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// MarshalIndent returns the indented JSON encoding of v.
// prefix is accepted for encoding/json signature parity and ignored.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true), jsontext.WithIndent(indent))
}

// Write encodes v to w followed by a newline. An empty indent writes
// compact JSON.
func Write(w io.Writer, v any, indent string) error {
	var err error
	if indent != "" {
		err = json.MarshalWrite(w, v, json.Deterministic(true), jsontext.WithIndent(indent))
	} else {
		err = json.MarshalWrite(w, v, json.Deterministic(true))
	}
	if err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

// Read decodes a single JSON value from r into v.
func Read(r io.Reader, v any) error {
	return json.UnmarshalRead(r, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}
