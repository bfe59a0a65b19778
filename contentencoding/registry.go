// Package contentencoding maps Content-Encoding tokens to stream decoders.
//
// The default registry knows gzip, x-gzip and deflate. Tokens are matched
// exactly as they appear on the wire. Reads and writes are safe for
// concurrent use: writers publish a fresh immutable snapshot and readers
// always see either the previous or the new table.
package contentencoding

import (
	"bufio"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/kbukum/httpbind/errors"
)

// Content-Encoding tokens registered by default.
const (
	Gzip    = "gzip"
	XGzip   = "x-gzip"
	Deflate = "deflate"
	// Identity means no encoding and is never registered.
	Identity = "identity"
)

// DecoderFactory wraps an encoded stream in a decoding reader.
type DecoderFactory func(r io.Reader) (io.ReadCloser, error)

// Registry is a token to DecoderFactory table.
type Registry struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[map[string]DecoderFactory]
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// NewRegistry creates a registry holding the default decoders.
func NewRegistry() *Registry {
	r := &Registry{}
	table := map[string]DecoderFactory{
		Gzip:    NewGzipDecoder,
		XGzip:   NewGzipDecoder,
		Deflate: NewDeflateDecoder,
	}
	r.snap.Store(&table)
	return r
}

// NewEmptyRegistry creates a registry with no decoders.
func NewEmptyRegistry() *Registry {
	r := &Registry{}
	table := map[string]DecoderFactory{}
	r.snap.Store(&table)
	return r
}

func (r *Registry) table() map[string]DecoderFactory {
	return *r.snap.Load()
}

// Get returns the decoder registered for token.
func (r *Registry) Get(token string) (DecoderFactory, error) {
	if token == "" {
		return nil, errors.ArgumentNull("encoding")
	}
	f, ok := r.table()[token]
	if !ok {
		return nil, errors.InvalidArgument("encoding", "unsupported content encoding "+token)
	}
	return f, nil
}

// AddOrReplace registers f under token.
func (r *Registry) AddOrReplace(token string, f DecoderFactory) error {
	if token == "" {
		return errors.ArgumentNull("encoding")
	}
	if f == nil {
		return errors.ArgumentNull("factory")
	}
	r.update(func(t map[string]DecoderFactory) { t[token] = f })
	return nil
}

// Remove unregisters token. Removing an unknown token is a no-op.
func (r *Registry) Remove(token string) {
	if _, ok := r.table()[token]; !ok {
		return
	}
	r.update(func(t map[string]DecoderFactory) { delete(t, token) })
}

func (r *Registry) update(fn func(map[string]DecoderFactory)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.table()
	next := make(map[string]DecoderFactory, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	fn(next)
	r.snap.Store(&next)
}

// SupportedEncodings returns the registered tokens in sorted order.
func (r *Registry) SupportedEncodings() []string {
	t := r.table()
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AcceptEncoding returns the Accept-Encoding value for the registered tokens.
func (r *Registry) AcceptEncoding() string {
	return strings.Join(r.SupportedEncodings(), ", ")
}

// AddAcceptEncodings sets the Accept-Encoding header of req to every
// registered token. An empty registry leaves the header untouched.
func (r *Registry) AddAcceptEncodings(req *http.Request) error {
	if req == nil {
		return errors.ArgumentNull("request")
	}
	if v := r.AcceptEncoding(); v != "" {
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Header.Set("Accept-Encoding", v)
	}
	return nil
}

// Decode wraps body in the decoders named by a Content-Encoding header
// value. Encodings are listed in the order they were applied, so they are
// undone from last to first. An empty value or identity returns body as is.
func (r *Registry) Decode(contentEncoding string, body io.Reader) (io.ReadCloser, error) {
	tokens := splitTokens(contentEncoding)
	var rc io.ReadCloser = io.NopCloser(body)
	if len(tokens) == 0 {
		return rc, nil
	}
	closers := make([]io.Closer, 0, len(tokens))
	cur := body
	for i := len(tokens) - 1; i >= 0; i-- {
		f, err := r.Get(tokens[i])
		if err != nil {
			closeAll(closers)
			return nil, err
		}
		dec, err := f(cur)
		if err != nil {
			closeAll(closers)
			return nil, errors.Client("decode "+tokens[i]+" content", err)
		}
		closers = append(closers, dec)
		cur = dec
	}
	return &chain{Reader: cur, closers: closers}, nil
}

func splitTokens(v string) []string {
	var out []string
	for _, t := range strings.Split(v, ",") {
		t = strings.TrimSpace(t)
		if t == "" || t == Identity {
			continue
		}
		out = append(out, t)
	}
	return out
}

type chain struct {
	io.Reader
	closers []io.Closer
}

func (c *chain) Close() error {
	return closeAll(c.closers)
}

func closeAll(closers []io.Closer) error {
	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewGzipDecoder decodes a gzip stream.
func NewGzipDecoder(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr, nil
}

// NewDeflateDecoder decodes a deflate stream, either zlib-wrapped or raw.
// The zlib header is sniffed from the first two bytes.
func NewDeflateDecoder(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err == nil && isZlibHeader(head[0], head[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
