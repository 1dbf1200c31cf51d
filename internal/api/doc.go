// Package api contains the HTTP handlers for the task, notification, user,
// and authentication endpoints. Handlers translate between the JSON surface
// and the service layer, and sanitize every error before it reaches a client.
package api
