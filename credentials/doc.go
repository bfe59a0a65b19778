// Package credentials provides the credential values a model can carry and
// the keyed credential cache the binder assembles when a model exposes more
// than one credential.
//
// Every credential implements Credential and knows how to authenticate an
// outbound *http.Request:
//
//	type GetReport struct {
//	    ID   string               `http:"path"`
//	    Auth *credentials.Bearer  // implicitly a credential
//	}
package credentials
