// Package client is the Go SDK for the back-office API.
//
// A Session holds the current bearer token, persisted in a Storage under the
// key "token", and exposes the identity decoded from it. Transport attaches
// that token to outgoing requests; Guard makes advisory routing decisions for
// front ends; Client wraps the HTTP endpoints.
//
// Identity on the client side is derived from the token alone and is never
// authoritative: the server verifies every request, and a missing_token or
// invalid_token rejection clears the session.
package client
