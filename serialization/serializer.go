// Package serialization writes request bodies and resolves which serializer
// a binding pass uses.
//
// A body serializer is picked by fixed precedence: a body or form field of
// the model, then a hint on the model type, then a hint on the client, and
// finally no body at all.
package serialization

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/httpbind/charset"
	"github.com/kbukum/httpbind/contentencoding"
	"github.com/kbukum/httpbind/errors"
)

// Serializer names.
const (
	NameJSON      = "json"
	NameXML       = "xml"
	NameForm      = "form"
	NameMultipart = "multipart"
	NameText      = "text"
	NameYAML      = "yaml"
	NameRaw       = "raw"
)

// Serializer encodes a value as the body of req. Implementations set
// Content-Type (with charset), Content-Length, GetBody and, when configured,
// Content-Encoding.
type Serializer interface {
	Name() string
	ContentType() string
	Serialize(ctx context.Context, value any, req *http.Request) error
}

// Hinter is implemented by model and client types that choose the request
// serializer for the whole body. A nil result means no hint.
type Hinter interface {
	RequestSerializer() Serializer
}

// Options are shared by the built-in serializers.
type Options struct {
	// Charset the text is transcoded to. Empty means UTF-8.
	Charset string
	// ContentEncoding compresses the body (gzip, x-gzip or deflate).
	ContentEncoding string
}

// Factory builds a serializer for the given options.
type Factory func(Options) Serializer

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		NameJSON:      func(o Options) Serializer { return &JSON{Options: o} },
		NameXML:       func(o Options) Serializer { return &XML{Options: o} },
		NameForm:      func(o Options) Serializer { return &Form{Options: o} },
		NameMultipart: func(o Options) Serializer { return &Multipart{Options: o} },
		NameText:      func(o Options) Serializer { return &Text{Options: o} },
		NameYAML:      func(o Options) Serializer { return &YAML{Options: o} },
		NameRaw:       func(o Options) Serializer { return &Raw{Options: o} },
	}
)

// Register adds or replaces a named serializer factory.
func Register(name string, f Factory) error {
	if name == "" {
		return errors.ArgumentNull("name")
	}
	if f == nil {
		return errors.ArgumentNull("factory")
	}
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[strings.ToLower(name)] = f
	return nil
}

// Lookup builds the serializer registered under name.
func Lookup(name string, opts Options) (Serializer, error) {
	if name == "" {
		return nil, errors.ArgumentNull("name")
	}
	factoriesMu.RLock()
	f, ok := factories[strings.ToLower(name)]
	factoriesMu.RUnlock()
	if !ok {
		return nil, errors.InvalidArgument("serializer", fmt.Sprintf("serializer %q not registered", name))
	}
	return f(opts), nil
}

// Names returns the registered serializer names in sorted order.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var hinterType = reflect.TypeOf((*Hinter)(nil)).Elem()

// HintOf returns the serializer hinted by v, or nil. Hints declared on a
// pointer receiver are found for non-pointer values too.
func HintOf(v any) Serializer {
	if v == nil {
		return nil
	}
	if h, ok := v.(Hinter); ok {
		return h.RequestSerializer()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer || !reflect.PointerTo(rv.Type()).Implements(hinterType) {
		return nil
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface().(Hinter).RequestSerializer()
}

// writeBody finalizes an encoded body on req. Textual bodies always carry a
// charset parameter.
func writeBody(ctx context.Context, req *http.Request, data []byte, contentType string, textual bool, opts Options) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	if err := errors.CheckContext(ctx); err != nil {
		return err
	}
	if opts.Charset != "" && textual {
		encoded, err := charset.Encode(data, opts.Charset)
		if err != nil {
			return errors.Client("encode request body", err)
		}
		data = encoded
		contentType += "; charset=" + opts.Charset
	} else if textual {
		contentType += "; charset=" + charset.UTF8
	}

	if opts.ContentEncoding != "" {
		enc, err := contentencoding.Encoder(opts.ContentEncoding)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		w, err := enc(&buf)
		if err != nil {
			return errors.Client("encode request body", err)
		}
		if _, err := w.Write(data); err != nil {
			return errors.Client("encode request body", err)
		}
		if err := w.Close(); err != nil {
			return errors.Client("encode request body", err)
		}
		data = buf.Bytes()
		req.Header.Set("Content-Encoding", opts.ContentEncoding)
	}

	setBody(req, data)
	req.Header.Set("Content-Type", contentType)
	return nil
}

func setBody(req *http.Request, data []byte) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.ContentLength = int64(len(data))
	if len(data) == 0 {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		return
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}
