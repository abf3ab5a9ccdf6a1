// Package api implements the HTTP REST API for WildTrace.
//
// This package provides:
//   - Read endpoints for devices, events, projects, submissions and field observations
//   - Authenticated write endpoints for the caller's own records
//   - Image streaming from the object store
//   - Middleware stack (request ID, logging, recovery, CORS, rate limiting, metrics)
//   - TLS support for production deployments
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// # Requests
//
// Every handler that touches the database takes one pooled connection for
// the lifetime of the request through database.DB.WithConn and hands it to
// a repository bound to that connection. The connection is back in the pool
// before the response body is written.
//
// # Security
//
// Tokens are issued by the external identity provider and checked with a
// shared HS256 secret. Authenticated handlers have the signature
//
//	func(w http.ResponseWriter, r *http.Request, id auth.Identity)
//
// and are wrapped with requireAuth, which rejects the request before any
// database work. Ownership mismatches are reported as 404 so the existence
// of other users' records is not revealed.
//
// # Responses
//
// Successful bodies are {data} or {data, pagination}; failures are
// {error, details}. Deletes answer 204 with no body.
//
// # Graceful Degradation
//
// The server operates without MQTT (no change notifications) and without
// an object store (image requests fail with a configuration error).
package api
