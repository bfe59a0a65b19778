package deserialization

import (
	"context"
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/httpbind/charset"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/response"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	bytesType           = reflect.TypeOf([]byte(nil))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// PlainText converts textual responses into strings and primitive values.
// A []byte result receives the raw body for any content type.
type PlainText struct {
	// Charset overrides the response charset. The default is ISO-8859-1.
	Charset string
}

func (*PlainText) Name() string { return "text" }

// CanDeserialize accepts []byte for any content, and strings, numbers,
// booleans, durations, times and text-unmarshalable types for text/*,
// application/json, application/xml or a missing content type.
func (*PlainText) CanDeserialize(s *response.Stream, t reflect.Type) bool {
	if s == nil || t == nil {
		return false
	}
	if t == bytesType {
		return true
	}
	if !IsPrimitive(t) {
		return false
	}
	mt := s.MediaType()
	return mt == "" || strings.HasPrefix(mt, "text/") || mt == "application/json" || mt == "application/xml"
}

func (p *PlainText) Deserialize(ctx context.Context, s *response.Stream, t reflect.Type) (any, error) {
	if t == bytesType {
		data, err := s.ReadAll(ctx)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	data, err := readText(ctx, s, p.Charset, charset.Latin1)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return zero(t), nil
	}
	v, err := Convert(string(data), t)
	if err != nil {
		return nil, errors.Client("deserialize text response", err)
	}
	return v, nil
}

// IsPrimitive reports whether t, or the type t points to, is a string or a
// primitive-convertible type.
func IsPrimitive(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType || t == durationType {
		return true
	}
	if t.Kind() != reflect.Interface && (t.Implements(textUnmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType)) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Convert parses text into a value of type t. Pointer types receive a
// pointer to the parsed value.
func Convert(text string, t reflect.Type) (any, error) {
	if t.Kind() == reflect.Pointer {
		v, err := convert(text, t.Elem())
		if err != nil {
			return nil, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p.Interface(), nil
	}
	v, err := convert(text, t)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func convert(text string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.String {
		return reflect.ValueOf(text).Convert(t), nil
	}
	trimmed := strings.TrimSpace(text)

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(trimmed)); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}
	if t == durationType {
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(trimmed, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(trimmed, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(trimmed, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, errors.InvalidArgument("resultType", "cannot convert text to "+t.String())
	}
	return v, nil
}
