// Package testutil provides shared helpers for the library's tests: an in-memory
// OAuth2 token endpoint, loopback HTTP servers, and TLS test certificates.
package testutil
