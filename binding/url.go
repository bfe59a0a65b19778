package binding

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/httpbind/errors"
	"github.com/kbukum/httpbind/property"
)

// ComposeURL substitutes the {token} placeholders of baseURL with model
// fields and appends the remaining query fields as form-encoded pairs.
//
// Tokens match a field's Go name or override name case-insensitively.
// Unmatched tokens stay in place. Query pairs follow any existing query
// string in declaration order and precede the fragment. A nil model
// returns baseURL unchanged.
func ComposeURL(client, model any, baseURL string) (composed string, err error) {
	if client == nil {
		return "", errors.ArgumentNull("client")
	}
	if baseURL == "" {
		return "", errors.ArgumentNull("baseUrl")
	}
	if isNilModel(model) {
		return baseURL, nil
	}

	desc, err := property.DescribeValue(model)
	if err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			composed, err = "", errors.Client("compose url", fmt.Errorf("panic reading model: %v", r))
		}
	}()

	c := composer{
		desc:     desc,
		root:     reflect.ValueOf(model),
		implicit: !suppressesImplicit(client, model),
		consumed: make(map[int]bool),
	}

	rest, fragment := splitFragment(baseURL)
	rest, err = c.substitute(rest)
	if err != nil {
		return "", err
	}
	pairs, err := c.queryPairs()
	if err != nil {
		return "", err
	}
	return joinQuery(rest, pairs) + fragment, nil
}

type composer struct {
	desc     *property.Model
	root     reflect.Value
	implicit bool
	// consumed holds the indexes of fields already used as path tokens.
	consumed map[int]bool
}

func (c *composer) substitute(template string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(template[open+1:], '}')
		if end < 0 {
			break
		}
		closeAt := open + 1 + end
		token := template[open+1 : closeAt]

		b.WriteString(template[:open])
		i, ok := c.pathField(token)
		if !ok {
			b.WriteString(template[open : closeAt+1])
		} else {
			s, err := c.pathValue(&c.desc.Fields[i])
			if err != nil {
				return "", err
			}
			c.consumed[i] = true
			b.WriteString(s)
		}
		template = template[closeAt+1:]
	}
	b.WriteString(template)
	return b.String(), nil
}

// pathField finds the field a token refers to.
func (c *composer) pathField(token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	for i := range c.desc.Fields {
		f := &c.desc.Fields[i]
		if !c.urlEligible(f.Usage, true) {
			continue
		}
		if strings.EqualFold(f.Name, token) || (f.Usage.HasName && strings.EqualFold(f.Usage.Name, token)) {
			return i, true
		}
	}
	return 0, false
}

func (c *composer) urlEligible(u property.Usage, path bool) bool {
	if u.IsIgnored() {
		return false
	}
	if u.IsImplicit() {
		return c.implicit
	}
	if path {
		if u.IsHeader() || u.IsCredentials() || u.IsBody() {
			return false
		}
		return u.Participates()
	}
	return u.IsQuery()
}

func (c *composer) pathValue(f *property.Field) (string, error) {
	fv, ok := f.Value(c.root)
	if !ok {
		return "", nil
	}
	var parts []string
	if property.IsMap(fv) {
		pairs, err := property.Pairs(fv, f.Usage.Format)
		if err != nil {
			return "", readError(f, err)
		}
		for _, p := range pairs {
			parts = append(parts, EscapeData(p.Key)+"="+EscapeData(p.Value))
		}
		return strings.Join(parts, ","), nil
	}
	vals, err := property.Values(fv, f.Usage.Format)
	if err != nil {
		return "", readError(f, err)
	}
	for _, s := range vals {
		parts = append(parts, EscapeData(s))
	}
	return strings.Join(parts, ","), nil
}

func (c *composer) queryPairs() ([]string, error) {
	var out []string
	for i := range c.desc.Fields {
		f := &c.desc.Fields[i]
		if c.consumed[i] || !c.urlEligible(f.Usage, false) {
			continue
		}
		fv, ok := f.Value(c.root)
		if !ok {
			continue
		}
		if property.IsMap(fv) {
			pairs, err := property.Pairs(fv, f.Usage.Format)
			if err != nil {
				return nil, readError(f, err)
			}
			for _, p := range pairs {
				out = append(out, EscapeForm(p.Key)+"="+EscapeForm(p.Value))
			}
			continue
		}
		vals, err := property.Values(fv, f.Usage.Format)
		if err != nil {
			return nil, readError(f, err)
		}
		key := EscapeForm(f.WireName())
		for _, s := range vals {
			out = append(out, key+"="+EscapeForm(s))
		}
	}
	return out, nil
}

func readError(f *property.Field, err error) error {
	return errors.Client("read property "+f.Name, err)
}

func splitFragment(u string) (string, string) {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i], u[i:]
	}
	return u, ""
}

func joinQuery(u string, pairs []string) string {
	if len(pairs) == 0 {
		return u
	}
	sep := "?"
	if i := strings.IndexByte(u, '?'); i >= 0 {
		sep = "&"
		if i == len(u)-1 || strings.HasSuffix(u, "&") {
			sep = ""
		}
	}
	return u + sep + strings.Join(pairs, "&")
}
