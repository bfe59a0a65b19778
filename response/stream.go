// Package response wraps an HTTP response and its body in a single-owner
// stream that decodes Content-Encoding and closes the transport exactly once.
package response

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/kbukum/httpbind/contentencoding"
	"github.com/kbukum/httpbind/errors"
)

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Stream.
type Option func(*Stream)

// WithRegistry sets the content-encoding registry used to decode the body.
// A nil registry disables decoding.
func WithRegistry(r *contentencoding.Registry) Option {
	return func(s *Stream) { s.registry = r; s.registrySet = true }
}

// Stream is an io.ReadCloser over a response body. It is not safe for
// concurrent use.
type Stream struct {
	resp        *http.Response
	registry    *contentencoding.Registry
	registrySet bool

	reader  io.Reader
	decoder io.Closer
	pos     int64

	closeOnce sync.Once
	closed    bool
	closeErr  error

	mediaType string
	charset   string
}

// compile-time assertion
var _ io.ReadSeekCloser = (*Stream)(nil)

// Open sends req through doer and wraps the response.
func Open(ctx context.Context, doer Doer, req *http.Request, opts ...Option) (*Stream, error) {
	if req == nil {
		return nil, errors.ArgumentNull("request")
	}
	if doer == nil {
		return nil, errors.ArgumentNull("doer")
	}
	if ctx != nil {
		if err := errors.CheckContext(ctx); err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)
	}
	resp, err := doer.Do(req)
	if err != nil {
		if ctx != nil && ctx.Err() != nil {
			return nil, errors.Canceled(err)
		}
		return nil, errors.Client("send request", err)
	}
	return FromResponse(resp, opts...)
}

// FromResponse wraps an already received response. On error the response
// body, if any, is closed.
func FromResponse(resp *http.Response, opts ...Option) (*Stream, error) {
	if resp == nil {
		return nil, errors.ArgumentNull("response")
	}
	if resp.Body == nil {
		return nil, errors.Client("response stream is null", nil)
	}
	s := &Stream{resp: resp}
	for _, opt := range opts {
		opt(s)
	}
	if !s.registrySet {
		s.registry = contentencoding.Default()
	}
	s.mediaType, s.charset = parseContentType(resp.Header.Get("Content-Type"))
	return s, nil
}

// Read reads decoded body bytes. Reading after Close fails with a disposed
// error.
func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, errors.Disposed("response stream")
	}
	if s.reader == nil {
		if err := s.init(); err != nil {
			return 0, err
		}
	}
	n, err := s.reader.Read(p)
	s.pos += int64(n)
	return n, err
}

func (s *Stream) init() error {
	body := s.resp.Body
	encoding := s.resp.Header.Get("Content-Encoding")
	if s.registry == nil || s.resp.Uncompressed || encoding == "" {
		s.reader = body
		return nil
	}
	dec, err := s.registry.Decode(encoding, body)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeClient) {
			if appErr, ok := errors.AsAppError(err); ok && appErr.Cause == io.EOF {
				s.reader = eofReader{}
				return nil
			}
			return err
		}
		return errors.Client("unsupported content encoding", err)
	}
	s.reader = dec
	s.decoder = dec
	return nil
}

// Seek repositions the stream when the underlying body supports seeking.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, errors.Disposed("response stream")
	}
	if s.reader == nil {
		if err := s.init(); err != nil {
			return 0, err
		}
	}
	seeker, ok := s.reader.(io.Seeker)
	if !ok {
		return 0, errors.Client("response stream does not support seeking", nil)
	}
	pos, err := seeker.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	s.pos = pos
	return pos, nil
}

// Empty reports whether the response carries no body: a 204, 205 or 304
// status, or a decoded body that ends before its first byte. The check
// consumes nothing; a peeked byte is replayed by the next Read.
func (s *Stream) Empty() bool {
	if s.closed {
		return false
	}
	switch s.resp.StatusCode {
	case http.StatusNoContent, http.StatusResetContent, http.StatusNotModified:
		return true
	}
	if s.reader == nil {
		if err := s.init(); err != nil {
			return false
		}
	}
	var b [1]byte
	n, err := io.ReadFull(s.reader, b[:])
	if n == 0 {
		return err == io.EOF
	}
	if seeker, ok := s.reader.(io.Seeker); ok {
		if _, err := seeker.Seek(-1, io.SeekCurrent); err == nil {
			return false
		}
	}
	s.reader = &peekedReader{peeked: b[:n], r: s.reader}
	return false
}

// Position returns the number of decoded bytes consumed so far.
func (s *Stream) Position() int64 { return s.pos }

// ReadAll reads the rest of the body. ctx is checked before reading.
func (s *Stream) ReadAll(ctx context.Context) ([]byte, error) {
	if err := errors.CheckContext(ctx); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(s)
	if err != nil {
		if errors.IsDisposed(err) || errors.IsClient(err) {
			return nil, err
		}
		if ctx != nil && ctx.Err() != nil {
			return nil, errors.Canceled(err)
		}
		return nil, errors.Client("read response body", err)
	}
	return b, nil
}

// Close closes the decoder and the transport body. Only the first call has
// an effect; later calls return the first result.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		if s.decoder != nil {
			s.closeErr = s.decoder.Close()
		}
		if err := s.resp.Body.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool { return s.closed }

// Response returns the wrapped response.
func (s *Stream) Response() *http.Response { return s.resp }

// StatusCode returns the response status code.
func (s *Stream) StatusCode() int { return s.resp.StatusCode }

// Header returns the response headers.
func (s *Stream) Header() http.Header { return s.resp.Header }

// ContentType returns the raw Content-Type header.
func (s *Stream) ContentType() string { return s.resp.Header.Get("Content-Type") }

// MediaType returns the lower-cased media type without parameters.
func (s *Stream) MediaType() string { return s.mediaType }

// Charset returns the charset parameter of the Content-Type, if any.
func (s *Stream) Charset() string { return s.charset }

// ContentLength returns the transport content length, -1 when unknown.
func (s *Stream) ContentLength() int64 { return s.resp.ContentLength }

// ResponseURI returns the URL of the request that produced the response.
func (s *Stream) ResponseURI() *url.URL {
	if s.resp.Request == nil {
		return nil
	}
	return s.resp.Request.URL
}

// MutuallyAuthenticated reports whether the response arrived over a TLS
// connection whose handshake completed with a verified peer chain.
func (s *Stream) MutuallyAuthenticated() bool {
	tls := s.resp.TLS
	return tls != nil && tls.HandshakeComplete && len(tls.VerifiedChains) > 0
}

// ParseContentType splits a Content-Type value into its lower-cased media
// type and charset parameter.
func ParseContentType(v string) (mediaType, charset string) {
	return parseContentType(v)
}

func parseContentType(v string) (string, string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ""
	}
	if mt, params, err := mime.ParseMediaType(v); err == nil {
		return mt, params["charset"]
	}
	mt, rest, _ := strings.Cut(v, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	for _, p := range strings.Split(rest, ";") {
		k, val, ok := strings.Cut(p, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "charset") {
			return mt, strings.Trim(strings.TrimSpace(val), `"`)
		}
	}
	return mt, ""
}

type peekedReader struct {
	peeked []byte
	r      io.Reader
}

func (p *peekedReader) Read(b []byte) (int, error) {
	if len(p.peeked) > 0 {
		n := copy(b, p.peeked)
		p.peeked = p.peeked[n:]
		return n, nil
	}
	return p.r.Read(b)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
