// Package api handles incoming HTTP requests, request validation, and
// response formatting. It adapts REST calls to the auth, task, and summary
// services and maps their error kinds to HTTP status codes.
package api
