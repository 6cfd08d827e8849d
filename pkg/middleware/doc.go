// Package middleware provides HTTP middleware for the console API.
//
// # Overview
//
// Rate limiting protects the credential issuance path: every cache miss on
// the sessions route costs a Kubernetes TokenRequest round trip, so an
// unthrottled client can drive load straight into the API server. Limits are
// keyed per principal for authenticated requests and per client IP for
// anonymous ones.
//
// Two limiter backends exist. The in-memory token bucket serves a single
// console replica; the Redis-backed window limiter shares counters across
// replicas. Both fail open when the backend misbehaves -- losing rate
// limiting briefly beats taking the console down.
package middleware
