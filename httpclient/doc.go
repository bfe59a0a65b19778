// Package httpclient sends models bound by the binding package over
// net/http and reads the responses into typed results.
//
// A model is a struct whose fields carry `http:"..."` hints; the client
// composes the URL from Config.BaseURL, maps headers and credentials,
// writes the body and reads the response through the deserialization
// providers. Status codes of 400 and above become *Error values.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com/users/{id}",
//	    Auth:    httpclient.BearerAuth("my-token"),
//	})
//
//	type getUser struct {
//	    ID int `http:"path"`
//	}
//	user, err := httpclient.Do[User](ctx, client, getUser{ID: 123})
//
// # Streaming
//
//	s, err := httpclient.Stream(ctx, client, export{}, httpclient.WithPath("export"))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// Retries are left to the transport: wrap it with WithTransport.
package httpclient
