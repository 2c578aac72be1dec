// Package visa implements an authenticated client for the Visa Developer
// Platform REST APIs (hello world, foreign exchange rates, global ATM
// locator, subscription manager, stop payment service).
//
// The client authenticates with basic credentials over mutual TLS. The
// underlying HTTPS transport is built lazily on the first operation call and
// reused for the lifetime of the client; if the certificate or key files are
// missing, every operation fails with a *ConfigError and the file paths are
// re-checked on the next call, so dropping valid credentials in place makes
// the client recover without a restart.
//
// All operations are opaque pass-throughs: the caller-supplied parameters are
// forwarded as the upstream request body and the decoded response body is
// returned unmodified. The client never interprets payment-network semantics.
package visa
