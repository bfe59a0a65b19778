// Package binding turns a tagged model into an outbound request and a
// response stream back into a typed result.
//
// A binding pass runs over a Context:
//
//	bc := binding.NewContext(client, &GetUser{ID: 42}, "https://api.example.com/users/{id}")
//	req, err := binding.NewRequestBinder().NewRequest(ctx, bc)
//	...
//	user, err := binding.ReadAs[User](ctx, binding.NewResponseBinder(), bc, stream)
//
// RequestBinder composes the URL, maps headers and credentials and resolves
// the body strategy. ResponseBinder dispatches the response to a
// deserialization provider.
package binding
