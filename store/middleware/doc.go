// Package middleware decorates a store.Service with logging and metrics.
package middleware
