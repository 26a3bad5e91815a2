// Package api handles incoming HTTP requests, request validation, and
// response formatting for the tutor. Handlers translate HTTP into calls on
// the user and session services and on the caller's live workspace, and map
// their errors to status codes without leaking internal details.
package api
