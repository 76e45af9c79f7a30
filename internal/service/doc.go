// Package service contains the application-specific use cases for tasks and
// task summaries. It orchestrates domain objects and the repositories defined
// in internal/store; authentication lives in the auth subpackage.
//
// Services receive their dependencies through constructor injection and
// never depend on a specific infrastructure implementation. Store failures
// are translated into the domain error taxonomy before they leave this
// package, so the API layer can map them to status codes without knowing
// about persistence.
package service
