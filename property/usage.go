package property

import "strings"

// Kind is a set of usage flags. Explicit tags may combine flags.
type Kind uint16

// Usage flags.
const (
	Path Kind = 1 << iota
	Query
	Header
	Form
	Body
	Credentials
	Ignore
	Implicit
)

// PathAndQuery is a field usable both as a path token and a query pair.
const PathAndQuery = Path | Query

var kindNames = []struct {
	kind Kind
	name string
}{
	{Path, "path"},
	{Query, "query"},
	{Header, "header"},
	{Form, "form"},
	{Body, "body"},
	{Credentials, "credentials"},
	{Ignore, "ignore"},
	{Implicit, "implicit"},
}

// Has reports whether every flag in f is set in k.
func (k Kind) Has(f Kind) bool { return f != 0 && k&f == f }

func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			parts = append(parts, kn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Usage is the resolved role of one model field.
type Usage struct {
	Kind Kind
	// Name overrides the field name on the wire. HasName distinguishes an
	// explicit empty override from no override.
	Name    string
	HasName bool
	// Format is applied to every rendered value.
	Format string
	// Serializer names the body serializer for a body field.
	Serializer string
	// Explicit is true when the kind came from the tag rather than the type.
	Explicit bool
}

func (u Usage) IsPath() bool        { return u.Kind&Path != 0 }
func (u Usage) IsQuery() bool       { return u.Kind&Query != 0 }
func (u Usage) IsHeader() bool      { return u.Kind&Header != 0 }
func (u Usage) IsForm() bool        { return u.Kind&Form != 0 }
func (u Usage) IsBody() bool        { return u.Kind&Body != 0 }
func (u Usage) IsCredentials() bool { return u.Kind&Credentials != 0 }
func (u Usage) IsIgnored() bool     { return u.Kind&Ignore != 0 }
func (u Usage) IsImplicit() bool    { return u.Kind&Implicit != 0 }

// Participates reports whether the field takes part in binding at all.
func (u Usage) Participates() bool { return u.Kind != 0 && !u.IsIgnored() }

// ResolvedName returns the override name when present, otherwise field.
func (u Usage) ResolvedName(field string) string {
	if u.HasName {
		return u.Name
	}
	return field
}
