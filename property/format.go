package property

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/httpbind/errors"
)

// Format renders value as text.
//
// An empty format uses the value's natural text form. A format containing
// '{' is a composite format where {0} is replaced by the value and {0:spec}
// applies spec: zero-padding digits ("0000"), fixed decimals ("0.00"),
// D<n>, X<n>, F<n> or, for time.Time, a Go layout. A format containing '%'
// is passed to fmt.Sprintf. Any other format is used as a bare spec.
func Format(value any, format string) (string, error) {
	switch {
	case format == "":
		return Text(value)
	case strings.ContainsAny(format, "{}"):
		return composite(value, format)
	case strings.Contains(format, "%"):
		return fmt.Sprintf(format, value), nil
	default:
		return applySpec(value, format)
	}
}

// Text returns the natural text form of value.
func Text(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case time.Duration:
		return v.String(), nil
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}
	return fmt.Sprint(value), nil
}

func composite(value any, format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return "", errors.InvalidFormat(format, "unterminated placeholder")
			}
			item := format[i+1 : i+end]
			index, spec, _ := strings.Cut(item, ":")
			if strings.TrimSpace(index) != "0" {
				return "", errors.InvalidFormat(format, "only placeholder {0} is supported")
			}
			var (
				s   string
				err error
			)
			if spec == "" {
				s, err = Text(value)
			} else {
				s, err = applySpec(value, spec)
			}
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			i += end
		case c == '}':
			return "", errors.InvalidFormat(format, "unbalanced '}'")
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func applySpec(value any, spec string) (string, error) {
	if t, ok := value.(time.Time); ok {
		return t.Format(spec), nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			s, err := formatUnsigned(uint64(-n), spec)
			return "-" + s, err
		}
		return formatUnsigned(uint64(n), spec)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return formatUnsigned(rv.Uint(), spec)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float(), spec)
	}
	return "", errors.InvalidFormat(spec, fmt.Sprintf("format spec does not apply to %T", value))
}

func formatUnsigned(n uint64, spec string) (string, error) {
	if width, ok := digitMask(spec); ok {
		return pad(strconv.FormatUint(n, 10), width), nil
	}
	if len(spec) == 0 {
		return strconv.FormatUint(n, 10), nil
	}
	width, err := specWidth(spec)
	if err != nil {
		return "", err
	}
	switch spec[0] {
	case 'D', 'd':
		return pad(strconv.FormatUint(n, 10), width), nil
	case 'X':
		return pad(strings.ToUpper(strconv.FormatUint(n, 16)), width), nil
	case 'x':
		return pad(strconv.FormatUint(n, 16), width), nil
	case 'F', 'f':
		return strconv.FormatFloat(float64(n), 'f', width, 64), nil
	}
	return "", errors.InvalidFormat(spec, "unknown numeric format")
}

func formatFloat(f float64, spec string) (string, error) {
	if intPart, frac, ok := strings.Cut(spec, "."); ok {
		intWidth, ok1 := digitMask(intPart)
		decimals, ok2 := digitMask(frac)
		if !ok1 || !ok2 {
			return "", errors.InvalidFormat(spec, "unknown numeric format")
		}
		s := strconv.FormatFloat(f, 'f', decimals, 64)
		sign := ""
		if strings.HasPrefix(s, "-") {
			sign, s = "-", s[1:]
		}
		whole, rest, _ := strings.Cut(s, ".")
		if rest != "" {
			rest = "." + rest
		}
		return sign + pad(whole, intWidth) + rest, nil
	}
	if width, ok := digitMask(spec); ok {
		return formatFloat(f, strings.Repeat("0", width)+".")
	}
	if len(spec) > 0 && (spec[0] == 'F' || spec[0] == 'f') {
		width, err := specWidth(spec)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', width, 64), nil
	}
	return "", errors.InvalidFormat(spec, "unknown numeric format")
}

// digitMask reports the count of '0' placeholders when spec consists only of
// '0' and '#'. An empty mask is valid with width zero.
func digitMask(spec string) (int, bool) {
	width := 0
	for _, r := range spec {
		switch r {
		case '0':
			width++
		case '#':
		default:
			return 0, false
		}
	}
	return width, true
}

func specWidth(spec string) (int, error) {
	if len(spec) == 1 {
		return 0, nil
	}
	w, err := strconv.Atoi(spec[1:])
	if err != nil || w < 0 {
		return 0, errors.InvalidFormat(spec, "invalid precision")
	}
	return w, nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Pair is one rendered key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Values renders a field value as one string per element. Pointers and
// interfaces are followed; nil values, nil slices and nil elements are
// skipped. Slices and arrays yield one string per element, except []byte
// which is rendered as text. Maps are rendered by Pairs instead.
func Values(v reflect.Value, format string) ([]string, error) {
	v, ok := indirect(v)
	if !ok {
		return nil, nil
	}
	if isList(v) {
		out := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			ev, ok := indirect(v.Index(i))
			if !ok {
				continue
			}
			s, err := Format(ev.Interface(), format)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	s, err := Format(v.Interface(), format)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// Pairs renders a map value as key/value pairs sorted by key. List values
// produce one pair per element. Non-map values yield nil.
func Pairs(v reflect.Value, format string) ([]Pair, error) {
	v, ok := indirect(v)
	if !ok || v.Kind() != reflect.Map {
		return nil, nil
	}
	type keyed struct {
		key string
		val reflect.Value
	}
	entries := make([]keyed, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := Text(iter.Key().Interface())
		if err != nil {
			return nil, err
		}
		entries = append(entries, keyed{key: k, val: iter.Value()})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	var out []Pair
	for _, e := range entries {
		vals, err := Values(e.val, format)
		if err != nil {
			return nil, err
		}
		for _, s := range vals {
			out = append(out, Pair{Key: e.key, Value: s})
		}
	}
	return out, nil
}

// IsMap reports whether v holds a non-nil map after indirection.
func IsMap(v reflect.Value) bool {
	v, ok := indirect(v)
	return ok && v.Kind() == reflect.Map
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		if v.Kind() == reflect.Pointer && implementsText(v.Type()) && !implementsText(v.Type().Elem()) {
			break
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return reflect.Value{}, false
		}
	}
	return v, true
}

func implementsText(t reflect.Type) bool {
	return t.Implements(textMarshalerType) || t.Implements(stringerType)
}

func isList(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return v.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}
