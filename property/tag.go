package property

import (
	"strings"

	"github.com/kbukum/httpbind/errors"
)

// TagName is the struct tag key read by the classifier.
const TagName = "http"

var flagKinds = map[string]Kind{
	"path":        Path,
	"query":       Query,
	"pathquery":   PathAndQuery,
	"header":      Header,
	"form":        Form,
	"body":        Body,
	"credentials": Credentials,
	"-":           Ignore,
}

// ParseTag parses an `http` struct tag value.
//
// The tag is a comma-separated list of kind flags followed by options:
// name=<override>, serialize=<serializer> and format=<format>. Because a
// format may itself contain commas, format= consumes the rest of the tag.
func ParseTag(tag string) (Usage, error) {
	var u Usage
	rest := strings.TrimSpace(tag)
	for rest != "" {
		var part string
		if strings.HasPrefix(rest, "format=") {
			part, rest = rest, ""
		} else if i := strings.IndexByte(rest, ','); i >= 0 {
			part, rest = rest[:i], rest[i+1:]
		} else {
			part, rest = rest, ""
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if key, value, ok := strings.Cut(part, "="); ok {
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "name":
				u.Name, u.HasName = value, true
			case "format":
				if value == "" {
					return Usage{}, errors.InvalidFormat(tag, "empty format")
				}
				u.Format = value
			case "serialize":
				if value == "" {
					return Usage{}, errors.InvalidFormat(tag, "empty serializer name")
				}
				u.Serializer = strings.ToLower(value)
			default:
				return Usage{}, errors.InvalidFormat(tag, "unknown option "+key)
			}
			continue
		}

		kind, ok := flagKinds[strings.ToLower(part)]
		if !ok {
			return Usage{}, errors.InvalidFormat(tag, "unknown flag "+part)
		}
		u.Kind |= kind
		u.Explicit = true
	}

	if u.IsIgnored() && u.Kind != Ignore {
		return Usage{}, errors.InvalidFormat(tag, "ignore cannot be combined with other flags")
	}
	if u.Serializer != "" && u.Kind&(Body|Form) == 0 {
		return Usage{}, errors.InvalidFormat(tag, "serialize applies only to body or form fields")
	}
	return u, nil
}
