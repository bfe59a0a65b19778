package credentials

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/kbukum/httpbind/errors"
)

type cacheEntry struct {
	authority string
	name      string
	cred      Credential
}

// Cache is a composite credential keyed by URI authority and name.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries []cacheEntry
}

// compile-time assertion
var _ Credential = (*Cache)(nil)

// NewCache creates an empty credential cache.
func NewCache() *Cache {
	return &Cache{}
}

// Add registers cred under name for the authority of uri. Adding the same
// authority and name twice is an error.
func (c *Cache) Add(uri *url.URL, name string, cred Credential) error {
	if uri == nil {
		return errors.ArgumentNull("uri")
	}
	if name == "" {
		return errors.ArgumentNull("name")
	}
	if cred == nil {
		return errors.ArgumentNull("credential")
	}
	authority := Authority(uri)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.authority == authority && strings.EqualFold(e.name, name) {
			return errors.InvalidArgument("name", "a credential named "+name+" is already registered for "+authority)
		}
	}
	c.entries = append(c.entries, cacheEntry{authority: authority, name: name, cred: cred})
	return nil
}

// Get returns the credential registered under name for the authority of uri.
func (c *Cache) Get(uri *url.URL, name string) Credential {
	if uri == nil {
		return nil
	}
	authority := Authority(uri)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.authority == authority && strings.EqualFold(e.name, name) {
			return e.cred
		}
	}
	return nil
}

// Remove deletes the entry for name under the authority of uri, if present.
func (c *Cache) Remove(uri *url.URL, name string) {
	if uri == nil {
		return
	}
	authority := Authority(uri)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.authority == authority && strings.EqualFold(e.name, name) {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns the entry names in registration order.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Apply authenticates req with the first credential registered for the
// request's authority. Requests to other authorities are left untouched.
func (c *Cache) Apply(req *http.Request) error {
	if req == nil || req.URL == nil {
		return errors.ArgumentNull("request")
	}
	authority := Authority(req.URL)

	c.mu.RLock()
	var cred Credential
	for _, e := range c.entries {
		if e.authority == authority {
			cred = e.cred
			break
		}
	}
	c.mu.RUnlock()

	if cred == nil {
		return nil
	}
	return cred.Apply(req)
}

// Authority returns the lower-cased host:port of uri, filling in the default
// port for http and https.
func Authority(uri *url.URL) string {
	host := strings.ToLower(uri.Hostname())
	port := uri.Port()
	if port == "" {
		switch strings.ToLower(uri.Scheme) {
		case "https":
			port = "443"
		case "http":
			port = "80"
		}
	}
	if port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}
