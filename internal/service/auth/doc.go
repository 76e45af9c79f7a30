// Package auth implements session tokens and the signup/login flows.
//
// Credentials are owned by an IdentityBackend chosen once at startup:
// RemoteBackend delegates to an external identity provider, LocalBackend
// keeps bcrypt hashes in the user table for development without one.
package auth
