package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/kbukum/httpbind/errors"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want any
	}{
		{"utf-8", unicode.UTF8},
		{"UTF-8", unicode.UTF8},
		{"iso-8859-1", charmap.ISO8859_1},
		{"ISO-8859-1", charmap.ISO8859_1},
		{`"latin1"`, charmap.ISO8859_1},
		{"windows-1252", charmap.Windows1252},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, enc)
		})
	}
}

func TestLookup_Errors(t *testing.T) {
	_, err := Lookup("")
	assert.True(t, errors.IsArgumentNull(err))

	_, err = Lookup("no-such-charset")
	assert.True(t, errors.IsUnsupportedContent(err))
}

func TestDecodeEncode(t *testing.T) {
	latin := []byte{'c', 'a', 'f', 0xE9}
	got, err := Decode(latin, Latin1)
	require.NoError(t, err)
	assert.Equal(t, "café", string(got))

	back, err := Encode([]byte("café"), Latin1)
	require.NoError(t, err)
	assert.Equal(t, latin, back)

	got, err = Decode([]byte("\xEF\xBB\xBFhi"), "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))

	_, err = Decode([]byte("x"), "bogus")
	assert.True(t, errors.IsUnsupportedContent(err))
}
