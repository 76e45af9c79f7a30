// Package domain contains the core business entities, value objects, and
// error taxonomy of the task service, independent of storage or transport.
package domain
