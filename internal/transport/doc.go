// Package transport builds the HTTP clients used to send actions and fetch
// pages.
//
// Clients created here:
//   - apply an overall request timeout
//   - cap the number of redirects followed
//   - optionally dial through a SOCKS5 proxy (golang.org/x/net/proxy)
//   - never send a Cookie header and keep no cookie jar
//
// CheckProxy performs a SOCKS5 greeting against the configured proxy so a
// misconfigured proxy is reported before any action runs.
package transport
