// Package property classifies the fields of a request model.
//
// A field's role in the outbound request is decided by its `http` struct tag
// or, when the tag carries no kind flags, by the field's type:
//
//	type GetOrder struct {
//	    ID       string            `http:"path"`
//	    Expand   []string          `http:"query,name=expand"`
//	    Version  int               `http:"header,name=X-Version,format={0:0000}"`
//	    Extra    http.Header       // implicit header collection
//	    Auth     *credentials.Basic // implicit credential
//	    Locale   string            // implicit path-or-query
//	    internal string            // never participates
//	}
//
// Describe builds a descriptor table for a struct type once and caches it.
package property
