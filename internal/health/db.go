package health

import (
	"context"
	"database/sql"
)

// DBChecker reports whether the catalog database is reachable.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker wraps an open database handle for readiness probing.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

// HealthCheck pings the database within the probe deadline.
func (c *DBChecker) HealthCheck(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
