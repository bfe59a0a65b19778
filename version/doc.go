// Package version reports build information and the default User-Agent sent
// by httpclient.
//
// Version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/httpbind/version.Version=1.0.0"
//
// When unset, the commit falls back to the VCS stamp embedded by the Go
// toolchain.
package version
