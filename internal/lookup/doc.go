// Package lookup fetches responses from upstream lookup APIs.
//
// A Client expands a category's endpoint template, waits on a shared rate
// limiter, sends the request (optionally through a SOCKS5 proxy), and
// decodes the body into an ordered payload.Value. Successful responses are
// cached for a configurable TTL keyed by category and query.
//
// A response counts as found when the status is 2xx, the body is a truthy
// JSON value other than an empty object or array, and it has no truthy
// "error" field. Anything else produces a
// *NotFoundError carrying the upstream message.
package lookup
