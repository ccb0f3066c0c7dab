package health

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/lib/pq"
)

var (
	_ Checker = (*DBChecker)(nil)
	_ Checker = (*RedisChecker)(nil)
)

func TestDBCheckerClosedDatabase(t *testing.T) {
	db, err := sql.Open("postgres", "postgres://localhost:5432/orientis?sslmode=disable")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	checker := NewDBChecker(db)
	if err := checker.HealthCheck(context.Background()); err == nil {
		t.Error("expected health check to fail on a closed database")
	}
}
