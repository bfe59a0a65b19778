package contentencoding

import (
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/kbukum/httpbind/errors"
)

// EncoderFactory wraps a writer in an encoding writer. The caller must
// Close the returned writer to flush the trailer.
type EncoderFactory func(w io.Writer) (io.WriteCloser, error)

// Encoder returns the request body encoder for token.
func Encoder(token string) (EncoderFactory, error) {
	switch token {
	case "":
		return nil, errors.ArgumentNull("encoding")
	case Gzip, XGzip:
		return func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		}, nil
	case Deflate:
		return func(w io.Writer) (io.WriteCloser, error) {
			return zlib.NewWriter(w), nil
		}, nil
	}
	return nil, errors.InvalidArgument("encoding", "unsupported content encoding "+token)
}
