// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from it: listen port, body limit, read
// timeout, the graceful shutdown budget and the static API key checked by the auth
// middleware.
package server
