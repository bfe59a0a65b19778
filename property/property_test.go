package property

import (
	"net/http"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/httpbind/credentials"
	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/header"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Usage
	}{
		{"path", Usage{Kind: Path, Explicit: true}},
		{"pathquery", Usage{Kind: PathAndQuery, Explicit: true}},
		{"path,query,header,form", Usage{Kind: Path | Query | Header | Form, Explicit: true}},
		{"header,name=X-Trace", Usage{Kind: Header, Name: "X-Trace", HasName: true, Explicit: true}},
		{"header,name=", Usage{Kind: Header, Name: "", HasName: true, Explicit: true}},
		{"header,name=xx-header-xx,format={0:#,##0}", Usage{Kind: Header, Name: "xx-header-xx", HasName: true, Format: "{0:#,##0}", Explicit: true}},
		{"body,serialize=JSON", Usage{Kind: Body, Serializer: "json", Explicit: true}},
		{"-", Usage{Kind: Ignore, Explicit: true}},
		{",name=locale", Usage{Name: "locale", HasName: true}},
		{"", Usage{}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseTag(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTag_Errors(t *testing.T) {
	for _, tag := range []string{"bogus", "path,color=red", "-,path", "query,serialize=json", "header,format="} {
		_, err := ParseTag(tag)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat), tag)
	}
}

func TestUsage_CompositePredicates(t *testing.T) {
	u, err := ParseTag("path,query,header,form")
	require.NoError(t, err)
	assert.True(t, u.IsPath())
	assert.True(t, u.IsQuery())
	assert.True(t, u.IsHeader())
	assert.True(t, u.IsForm())
	assert.False(t, u.IsBody())
	assert.False(t, u.IsIgnored())
	assert.False(t, u.IsCredentials())
	assert.Equal(t, "path|query|header|form", u.Kind.String())
}

func TestUsage_ResolvedName(t *testing.T) {
	assert.Equal(t, "Field", Usage{}.ResolvedName("Field"))
	assert.Equal(t, "", Usage{HasName: true}.ResolvedName("Field"))
	assert.Equal(t, "x", Usage{Name: "x", HasName: true}.ResolvedName("Field"))
}

type level int

type textID struct{ v string }

func (t textID) MarshalText() ([]byte, error) { return []byte(t.v), nil }

type nested struct{ A string }

func TestImplicitKind(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want Kind
	}{
		{"string", reflect.TypeOf(""), Implicit},
		{"int pointer", reflect.TypeOf(new(int)), Implicit},
		{"named int", reflect.TypeOf(level(0)), Implicit},
		{"bool", reflect.TypeOf(true), Implicit},
		{"time", reflect.TypeOf(time.Time{}), Implicit},
		{"duration", reflect.TypeOf(time.Second), Implicit},
		{"uuid", reflect.TypeOf(uuid.UUID{}), Implicit},
		{"text marshaler", reflect.TypeOf(textID{}), Implicit},
		{"string slice", reflect.TypeOf([]string(nil)), Implicit},
		{"bytes", reflect.TypeOf([]byte(nil)), Implicit},
		{"map", reflect.TypeOf(map[string]int(nil)), Implicit},
		{"url values", reflect.TypeOf(url.Values(nil)), Implicit},
		{"http header", reflect.TypeOf(http.Header(nil)), Header},
		{"header set", reflect.TypeOf(&header.Set{}), Header},
		{"basic", reflect.TypeOf(&credentials.Basic{}), Credentials},
		{"cache", reflect.TypeOf(credentials.NewCache()), Credentials},
		{"credential func", reflect.TypeOf(credentials.Func(nil)), Credentials},
		{"credential interface", reflect.TypeOf((*credentials.Credential)(nil)).Elem(), Credentials},
		{"struct", reflect.TypeOf(nested{}), 0},
		{"struct slice", reflect.TypeOf([]nested(nil)), 0},
		{"func", reflect.TypeOf(func() {}), 0},
		{"chan", reflect.TypeOf(make(chan int)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImplicitKind(tt.typ))
		})
	}
}

type Paging struct {
	Page int
	Size int `http:"query,name=page_size"`
}

type describeModel struct {
	Paging
	ID      string            `http:"path"`
	Version int               `http:"header,name=xx-header-xx,format={0:0000}"`
	Extra   http.Header       `http:",name="`
	Auth    *credentials.Basic
	Skip    string `http:"-"`
	Nested  nested
	Page    string
	hidden  string
}

func TestDescribe(t *testing.T) {
	m, err := Describe(reflect.TypeOf(&describeModel{}))
	require.NoError(t, err)

	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ID", "Version", "Extra", "Auth", "Page", "Size"}, names)

	extra, ok := m.Lookup("extra")
	require.True(t, ok)
	assert.True(t, extra.Collection)
	assert.Equal(t, Header, extra.Usage.Kind)
	assert.True(t, extra.Usage.HasName)
	assert.Equal(t, "", extra.WireName())

	size, ok := m.Lookup("PAGE_SIZE")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, size.Index)

	assert.True(t, m.HasKind(Credentials))
	assert.False(t, m.HasKind(Body))

	again, err := Describe(reflect.TypeOf(describeModel{}))
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestDescribe_InvalidTag(t *testing.T) {
	type bad struct {
		A string `http:"sideways"`
	}
	_, err := Describe(reflect.TypeOf(bad{}))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestDescribe_NilAndNonStruct(t *testing.T) {
	_, err := Describe(nil)
	assert.True(t, errors.IsArgumentNull(err))

	m, err := Describe(reflect.TypeOf(map[string]string{}))
	require.NoError(t, err)
	assert.Empty(t, m.Fields)

	m, err = DescribeValue(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestField_ValueThroughNilEmbeddedPointer(t *testing.T) {
	type Inner struct{ Name string }
	type outer struct{ *Inner }
	m, err := Describe(reflect.TypeOf(outer{}))
	require.NoError(t, err)
	require.Len(t, m.Fields, 1)

	_, ok := m.Fields[0].Value(reflect.ValueOf(outer{}))
	assert.False(t, ok)

	v, ok := m.Fields[0].Value(reflect.ValueOf(&outer{Inner: &Inner{Name: "n"}}))
	require.True(t, ok)
	assert.Equal(t, "n", v.String())
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 9, 10, 4, 5, 0, time.UTC)
	tests := []struct {
		name   string
		value  any
		format string
		want   string
	}{
		{"natural int", 2, "", "2"},
		{"composite pad", 2, "{0:0000}", "0002"},
		{"go verb", 2, "%04d", "0002"},
		{"composite plain", 2, "{0}", "2"},
		{"surrounding text", 7, "id-{0:D3}", "id-007"},
		{"negative pad", -2, "{0:0000}", "-0002"},
		{"hex", 255, "{0:X4}", "00FF"},
		{"float decimals", 3.14159, "{0:0.00}", "3.14"},
		{"float F", 2.5, "F3", "2.500"},
		{"bare mask", uint8(5), "000", "005"},
		{"time layout", ts, "{0:2006-01-02}", "2024-03-09"},
		{"time natural", ts, "", "2024-03-09T10:04:05Z"},
		{"escaped braces", 1, "{{{0}}}", "{1}"},
		{"duration", 90 * time.Second, "", "1m30s"},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"float natural", 0.1, "", "0.1"},
		{"bool", true, "", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.value, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	for _, format := range []string{"{1}", "{0", "x}", "{0:Q}"} {
		_, err := Format(3, format)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat), format)
	}
	_, err := Format("text", "{0:0000}")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestValues(t *testing.T) {
	n := 4
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{"scalar", "a b", []string{"a b"}},
		{"pointer", &n, []string{"4"}},
		{"nil pointer", (*int)(nil), nil},
		{"slice", []int{1, 2}, []string{"1", "2"}},
		{"nil slice", []string(nil), nil},
		{"slice with nil", []*int{nil, &n}, []string{"4"}},
		{"bytes", []byte("raw"), []string{"raw"}},
		{"time pointer", &time.Time{}, []string{"0001-01-01T00:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Values(reflect.ValueOf(tt.value), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairs(t *testing.T) {
	got, err := Pairs(reflect.ValueOf(url.Values{"b": {"2", "3"}, "a": {"1"}}), "")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"a", "1"}, {"b", "2"}, {"b", "3"}}, got)

	got, err = Pairs(reflect.ValueOf(map[string]int{"z": 1, "y": 2}), "{0:00}")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"y", "02"}, {"z", "01"}}, got)

	assert.True(t, IsMap(reflect.ValueOf(map[string]int{})))
	assert.False(t, IsMap(reflect.ValueOf(map[string]int(nil))))
	assert.False(t, IsMap(reflect.ValueOf("x")))
}
