// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the services, which depend only on the contracts declared here.
package store
