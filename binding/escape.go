package binding

const upperhex = "0123456789ABCDEF"

type escapeMode int

const (
	// escapeData keeps only RFC 3986 unreserved characters.
	escapeData escapeMode = iota
	// escapeForm is form encoding: space becomes '+' and "!*()" are kept.
	escapeForm
)

func shouldEscape(c byte, mode escapeMode) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '_', '.', '~':
		return false
	case '!', '*', '(', ')':
		return mode == escapeData
	}
	return true
}

func escape(s string, mode escapeMode) string {
	hexCount, spaceCount := 0, 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c, mode) {
			if c == ' ' && mode == escapeForm {
				spaceCount++
			} else {
				hexCount++
			}
		}
	}
	if hexCount == 0 && spaceCount == 0 {
		return s
	}

	t := make([]byte, len(s)+2*hexCount)
	j := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ' && mode == escapeForm:
			t[j] = '+'
			j++
		case shouldEscape(c, mode):
			t[j] = '%'
			t[j+1] = upperhex[c>>4]
			t[j+2] = upperhex[c&15]
			j += 3
		default:
			t[j] = c
			j++
		}
	}
	return string(t)
}

// EscapeData percent-encodes s for use inside a URL path segment.
func EscapeData(s string) string { return escape(s, escapeData) }

// EscapeForm form-encodes s for use as a query key or value.
func EscapeForm(s string) string { return escape(s, escapeForm) }
