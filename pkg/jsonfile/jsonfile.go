// Package jsonfile edits JSON documents through types.FS.
//
// Edits are applied to the raw document bytes, so keys, numbers and
// everything not touched keep their original form and order. Editing a
// single field of a hand-maintained file such as package.json produces a
// minimal diff.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Indent is the indentation used when a document is written.
const Indent = "  "

var prettyOptions = &pretty.Options{Indent: Indent}

// Document is a JSON object held as its encoded bytes.
type Document struct {
	raw []byte
}

// NewDocument returns an empty object.
func NewDocument() *Document {
	return &Document{raw: []byte("{}")}
}

// ParseDocument validates data as a single JSON object.
func ParseDocument(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrInvalidInput, "invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, errors.New(errors.ErrInvalidInput, "JSON document is not an object")
	}
	return &Document{raw: append([]byte(nil), data...)}, nil
}

// ReadDocument reads and validates the JSON object at path.
func ReadDocument(fsys types.FS, path string) (*Document, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path).WithDetail("path", path)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid JSON in %s", path).WithDetail("path", path)
	}
	return doc, nil
}

// WriteDocument stores doc at path with two-space indentation and a
// trailing newline.
func WriteDocument(fsys types.FS, path string, doc *Document) error {
	if err := fsys.WriteFile(path, doc.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path).WithDetail("path", path)
	}
	return nil
}

// Bytes returns the indented document ending in a newline.
func (d *Document) Bytes() []byte {
	out := pretty.PrettyOptions(d.raw, prettyOptions)
	return append(bytes.TrimRight(out, "\n"), '\n')
}

// Get returns the value at a dot-separated path of object keys.
func (d *Document) Get(path string) (gjson.Result, bool) {
	cur := gjson.ParseBytes(d.raw)
	for _, part := range strings.Split(path, ".") {
		if !cur.IsObject() {
			return gjson.Result{}, false
		}
		cur = cur.Get(gjson.Escape(part))
		if !cur.Exists() {
			return gjson.Result{}, false
		}
	}
	return cur, true
}

// Set stores value at a dot-separated path, creating intermediate objects.
// Every segment is an object key, even when it looks like an index.
// Setting through a value that is not an object is an error.
func (d *Document) Set(path string, value interface{}) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "empty JSON key")
	}
	parts := strings.Split(path, ".")
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		if v, ok := d.Get(prefix); ok && !v.IsObject() {
			return errors.Newf(errors.ErrInvalidInput, "cannot set %s: %s is not an object", path, prefix)
		}
	}

	raw, err := marshalValue(value)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "cannot encode value of %s", path)
	}
	out, err := sjson.SetRawBytes(d.raw, keyPath(parts), raw)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "cannot set %s", path)
	}
	d.raw = out
	return nil
}

// keyPath escapes each segment for sjson and forces numeric segments to be
// read as object keys.
func keyPath(parts []string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		p := gjson.Escape(part)
		if isIndex(part) || strings.HasPrefix(part, ":") {
			p = ":" + p
		}
		escaped[i] = p
	}
	return strings.Join(escaped, ".")
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// marshalValue encodes v compactly without escaping HTML characters. Maps
// coming from TOML or YAML decoders encode with sorted keys.
func marshalValue(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
