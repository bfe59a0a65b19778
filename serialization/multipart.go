package serialization

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/kbukum/httpbind/errors"
)

// MultipartBody is a multipart/form-data body.
type MultipartBody struct {
	// Fields are simple key-value form fields, written in order.
	Fields FormFields
	// Files are file upload fields.
	Files []FileField
}

// FileField is a file to upload in a multipart request. A model field of
// this type tagged `form` turns the form body into multipart.
type FileField struct {
	// FieldName is the form field name. Defaults to the model field name.
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the MIME type. If empty, application/octet-stream is used.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader is an alternative to Data for large files.
	Reader io.Reader
}

// Multipart writes multipart/form-data bodies.
type Multipart struct {
	Options
	// Boundary fixes the part boundary. Random when empty.
	Boundary string
}

func (*Multipart) Name() string        { return NameMultipart }
func (*Multipart) ContentType() string { return "multipart/form-data" }

// Serialize accepts *MultipartBody, MultipartBody or any form value
// understood by ToFormFields.
func (s *Multipart) Serialize(ctx context.Context, value any, req *http.Request) error {
	var body MultipartBody
	switch v := value.(type) {
	case *MultipartBody:
		if v != nil {
			body = *v
		}
	case MultipartBody:
		body = v
	default:
		fields, err := ToFormFields(value)
		if err != nil {
			return err
		}
		body.Fields = fields
	}
	if err := errors.CheckContext(ctx); err != nil {
		return err
	}

	data, contentType, err := body.encode(s.Boundary)
	if err != nil {
		return errors.Client("serialize multipart body", err)
	}
	// Charset does not apply to multipart bodies.
	return writeBody(ctx, req, data, contentType, false, Options{ContentEncoding: s.ContentEncoding})
}

func (m *MultipartBody) encode(boundary string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if boundary != "" {
		if err := w.SetBoundary(boundary); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Fields {
		if err := w.WriteField(f.Key, f.Value); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		var part io.Writer
		var err error

		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
			header.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, f.FileName)
		}
		if err != nil {
			return nil, "", err
		}

		if f.Data != nil {
			if _, err := part.Write(f.Data); err != nil {
				return nil, "", err
			}
		} else if f.Reader != nil {
			if _, err := io.Copy(part, f.Reader); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
