// Package charset resolves charset names to golang.org/x/text encodings and
// transcodes between them and UTF-8.
package charset

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/kbukum/httpbind/errors"
)

// Well-known charset names.
const (
	UTF8    = "utf-8"
	Latin1  = "iso-8859-1"
	UTF16   = "utf-16"
	ASCII   = "us-ascii"
	Unknown = ""
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lookup returns the encoding registered for name. IANA names are tried
// first, then WHATWG labels.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.Trim(strings.TrimSpace(name), `"`)
	if name == "" {
		return nil, errors.ArgumentNull("charset")
	}
	switch strings.ToLower(name) {
	case UTF8, "utf8":
		return unicode.UTF8, nil
	case Latin1, "latin1", "iso_8859-1":
		return charmap.ISO8859_1, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupportedContent, "unknown charset "+name).
		WithDetail("charset", name)
}

// IsUTF8 reports whether name denotes UTF-8. An empty name is not UTF-8.
func IsUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case UTF8, "utf8":
		return true
	}
	return false
}

// Decode converts data in the named charset to UTF-8. A leading UTF-8 byte
// order mark is dropped.
func Decode(data []byte, name string) ([]byte, error) {
	if IsUTF8(name) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errors.Client("decode "+name+" content", err)
	}
	return bytes.TrimPrefix(out, utf8BOM), nil
}

// Encode converts UTF-8 data to the named charset.
func Encode(data []byte, name string) ([]byte, error) {
	if IsUTF8(name) {
		return data, nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().Bytes(data)
	if err != nil {
		return nil, errors.Client("encode "+name+" content", err)
	}
	return out, nil
}
