// Package server provides the HTTP server backing the relay: a Gin
// engine behind an h2c-wrapped ServeMux, a standard middleware stack
// (recovery, request IDs, CORS, body-size limiting, request logging),
// and shared response envelopes.
package server
