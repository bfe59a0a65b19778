package deserialization

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/response"
)

func stream(t *testing.T, contentType string, body []byte) *response.Stream {
	t.Helper()
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	s, err := response.FromResponse(&http.Response{
		StatusCode: http.StatusOK,
		Header:     h,
		Body:       io.NopCloser(bytes.NewReader(body)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type order struct {
	ID    string   `json:"id" xml:"id" yaml:"id"`
	Items []string `json:"items" xml:"item" yaml:"items"`
}

type status int

type hintedResult struct{ Value string }

func (hintedResult) ResponseDeserializer() Provider { return &YAML{} }

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func TestDefaultRegistry_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		typ         reflect.Type
		want        string
	}{
		{"json struct", "application/json", typeOf[order](), "json"},
		{"json charset", "Application/JSON; charset=utf-8", typeOf[*order](), "json"},
		{"problem json", "application/problem+json", typeOf[map[string]any](), "json"},
		{"xml struct", "application/xml", typeOf[order](), "xml"},
		{"text xml", "text/xml; charset=iso-8859-1", typeOf[order](), "xml"},
		{"atom xml", "application/atom+xml", typeOf[order](), "xml"},
		{"text string", "text/plain", typeOf[string](), "text"},
		{"missing type string", "", typeOf[string](), "text"},
		{"json string", "application/json", typeOf[string](), "text"},
		{"bytes any type", "image/png", typeOf[[]byte](), "text"},
		{"enum", "text/plain", typeOf[status](), "text"},
		{"uuid", "text/plain", typeOf[uuid.UUID](), "text"},
		{"time", "text/plain", typeOf[time.Time](), "text"},
		{"json to slice", "application/json", typeOf[[]order](), "json"},
	}
	r := NewRegistry(DefaultProviders()...)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := r.Find(stream(t, tt.contentType, nil), tt.typ)
			require.NotNil(t, p)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestDefaultRegistry_NoProvider(t *testing.T) {
	r := NewRegistry(DefaultProviders()...)
	tests := []struct {
		name        string
		contentType string
		typ         reflect.Type
	}{
		{"struct from text", "text/plain", typeOf[order]()},
		{"struct from octet", "application/octet-stream", typeOf[order]()},
		{"string from octet", "application/octet-stream", typeOf[string]()},
		{"reader from json", "application/json", typeOf[io.Reader]()},
		{"yaml not default", "application/yaml", typeOf[order]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, r.Find(stream(t, tt.contentType, nil), tt.typ))
		})
	}
}

func TestJSON_Deserialize(t *testing.T) {
	s := stream(t, "application/json", []byte(`{"id":"o-1","items":["a","b"]}`))
	v, err := (&JSON{}).Deserialize(context.Background(), s, typeOf[order]())
	require.NoError(t, err)
	assert.Equal(t, order{ID: "o-1", Items: []string{"a", "b"}}, v)

	v, err = (&JSON{}).Deserialize(context.Background(), stream(t, "application/json", []byte(`{"id":"p"}`)), typeOf[*order]())
	require.NoError(t, err)
	assert.Equal(t, &order{ID: "p"}, v)
}

func TestJSON_Malformed(t *testing.T) {
	_, err := (&JSON{}).Deserialize(context.Background(), stream(t, "application/json", []byte(`{"id":`)), typeOf[order]())
	assert.True(t, errors.IsClient(err))
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.NotNil(t, appErr.Cause)
}

func TestJSON_ConfiguredCharsetWins(t *testing.T) {
	body := []byte{'{', '"', 'i', 'd', '"', ':', '"', 0xE9, '"', '}'}
	s := stream(t, "application/json; charset=utf-8", body)
	v, err := (&JSON{Charset: "iso-8859-1"}).Deserialize(context.Background(), s, typeOf[order]())
	require.NoError(t, err)
	assert.Equal(t, "é", v.(order).ID)
}

func TestXML_Deserialize(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><order><id>caf` + "\xe9" + `</id><item>x</item></order>`)
	s := stream(t, "text/xml; charset=iso-8859-1", body)
	v, err := (&XML{}).Deserialize(context.Background(), s, typeOf[order]())
	require.NoError(t, err)
	assert.Equal(t, order{ID: "café", Items: []string{"x"}}, v)
}

func TestYAML_Deserialize(t *testing.T) {
	s := stream(t, "application/yaml", []byte("id: y-1\nitems: [a]\n"))
	p := &YAML{}
	require.True(t, p.CanDeserialize(s, typeOf[order]()))
	v, err := p.Deserialize(context.Background(), s, typeOf[order]())
	require.NoError(t, err)
	assert.Equal(t, order{ID: "y-1", Items: []string{"a"}}, v)
}

func TestPlainText_Deserialize(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 42
	tests := []struct {
		name string
		body string
		typ  reflect.Type
		want any
	}{
		{"string", "hello world", typeOf[string](), "hello world"},
		{"int", " 42\n", typeOf[int](), 42},
		{"int pointer", "42", typeOf[*int](), &n},
		{"uint8", "255", typeOf[uint8](), uint8(255)},
		{"float", "3.5", typeOf[float64](), 3.5},
		{"bool", "true", typeOf[bool](), true},
		{"enum", "3", typeOf[status](), status(3)},
		{"uuid", id.String(), typeOf[uuid.UUID](), id},
		{"time", "2024-01-02T03:04:05Z", typeOf[time.Time](), ts},
		{"duration", "1m30s", typeOf[time.Duration](), 90 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := (&PlainText{}).Deserialize(context.Background(), stream(t, "text/plain", []byte(tt.body)), tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestPlainText_DefaultsToLatin1(t *testing.T) {
	s := stream(t, "text/plain", []byte{'c', 'a', 'f', 0xE9})
	v, err := (&PlainText{}).Deserialize(context.Background(), s, typeOf[string]())
	require.NoError(t, err)
	assert.Equal(t, "café", v)

	s = stream(t, "text/plain; charset=utf-8", []byte("café"))
	v, err = (&PlainText{}).Deserialize(context.Background(), s, typeOf[string]())
	require.NoError(t, err)
	assert.Equal(t, "café", v)
}

func TestPlainText_BytesPassThrough(t *testing.T) {
	raw := []byte{0x00, 0xFF, 0xE9}
	v, err := (&PlainText{Charset: "utf-16"}).Deserialize(context.Background(), stream(t, "application/octet-stream", raw), typeOf[[]byte]())
	require.NoError(t, err)
	assert.Equal(t, raw, v)
}

func TestEmptyBodyYieldsZeroValue(t *testing.T) {
	providers := []struct {
		p           Provider
		contentType string
		typ         reflect.Type
		want        any
	}{
		{&JSON{}, "application/json", typeOf[order](), order{}},
		{&JSON{}, "application/json", typeOf[*order](), (*order)(nil)},
		{&XML{}, "application/xml", typeOf[order](), order{}},
		{&YAML{}, "application/yaml", typeOf[order](), order{}},
		{&PlainText{}, "text/plain", typeOf[int](), 0},
		{&PlainText{}, "text/plain", typeOf[string](), ""},
	}
	for _, tt := range providers {
		v, err := tt.p.Deserialize(context.Background(), stream(t, tt.contentType, nil), tt.typ)
		require.NoError(t, err, tt.p.Name())
		assert.Equal(t, tt.want, v, tt.p.Name())
	}
}

func TestDeserialize_Failures(t *testing.T) {
	_, err := (&PlainText{}).Deserialize(context.Background(), stream(t, "text/plain", []byte("abc")), typeOf[int]())
	assert.True(t, errors.IsClient(err))

	_, err = (&PlainText{}).Deserialize(context.Background(), stream(t, "text/plain; charset=no-such", []byte("abc")), typeOf[string]())
	assert.True(t, errors.IsClient(err))
	assert.True(t, errors.IsUnsupportedContent(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&JSON{}).Deserialize(ctx, stream(t, "application/json", []byte(`{}`)), typeOf[order]())
	assert.True(t, errors.IsCanceled(err))
}

func TestHintOfType(t *testing.T) {
	p := HintOfType(typeOf[hintedResult]())
	require.NotNil(t, p)
	assert.Equal(t, "yaml", p.Name())
	assert.Equal(t, "yaml", HintOfType(typeOf[*hintedResult]()).Name())
	assert.Nil(t, HintOfType(typeOf[order]()))
	assert.Nil(t, HintOfType(typeOf[io.Reader]()))
	assert.Equal(t, "yaml", HintOf(hintedResult{}).Name())
	assert.Nil(t, HintOf(nil))
}

func TestRegistry_SetProviders(t *testing.T) {
	r := NewRegistry(DefaultProviders()...)
	assert.Equal(t, 3, r.Len())

	err := r.SetProviders(nil)
	assert.True(t, errors.IsArgumentNull(err))
	assert.Equal(t, "value", errors.Param(err))

	require.NoError(t, r.SetProviders([]Provider{&PlainText{}}))
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Prepend(&YAML{}))
	require.NoError(t, r.Append(&JSON{}))
	names := make([]string, 0, r.Len())
	for _, p := range r.Providers() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"yaml", "text", "json"}, names)

	snapshot := r.Providers()
	snapshot[0] = nil
	assert.NotNil(t, r.Providers()[0], "snapshots are copies")

	assert.True(t, errors.IsInvalidArgument(r.SetProviders([]Provider{nil})))
}

func TestDefault_Order(t *testing.T) {
	names := make([]string, 0, 3)
	for _, p := range Default().Providers() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"json", "xml", "text"}, names)
}

func TestRegistry_ConcurrentSetAndCount(t *testing.T) {
	r := NewRegistry(DefaultProviders()...)
	lists := [][]Provider{
		{&JSON{}},
		{&JSON{}, &XML{}},
		DefaultProviders(),
		{&JSON{}, &XML{}, &YAML{}, &PlainText{}},
	}
	valid := map[int]bool{1: true, 2: true, 3: true, 4: true}

	const goroutines = 32
	const perGoroutine = 10000 // 320k interleaved operations
	var wg sync.WaitGroup
	errs := make(chan string, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				switch (g + i) % 3 {
				case 0:
					if err := r.SetProviders(lists[(g+i)%len(lists)]); err != nil {
						errs <- err.Error()
						return
					}
				case 1:
					if n := r.Len(); !valid[n] {
						errs <- "observed invalid length"
						return
					}
				case 2:
					if n := len(r.Providers()); !valid[n] {
						errs <- "observed invalid snapshot"
						return
					}
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}
