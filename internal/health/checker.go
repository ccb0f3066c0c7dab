// Package health provides health check implementations for external dependencies.
package health

import "context"

// Checker is a health check for a single dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
