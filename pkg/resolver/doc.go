// Package resolver checks whether a value is known to a remote lookup service.
//
// Two services are used by the validator: the spectrum identifier service,
// which resolves Universal Spectrum Identifiers, and the structure service,
// which converts SMILES strings. Both are plain HTTP GET endpoints that take
// the value in a query parameter and answer 200 when the value resolves.
//
// # Behaviour
//
// A Lookup makes exactly one HTTP request. It returns nil on 200, a
// *StatusError for any other status and a *TransportError when no response
// was received. Retrying is the caller's decision; IsRetryable reports which
// errors are worth another attempt.
//
// Each HTTPResolver bounds its outstanding requests with a weighted semaphore
// and paces them with a token bucket, so a large table cannot flood a
// service. Connections are pooled and reused across lookups.
//
// # Health
//
// Every lookup updates the resolver's health. Three consecutive failures mark
// the service unhealthy until a later request succeeds. StartHealthChecker
// runs a periodic probe for long-running processes such as the HTTP API.
package resolver
