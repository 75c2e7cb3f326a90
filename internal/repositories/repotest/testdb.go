// Package repotest opens throwaway databases for tests that need the real
// repositories.
package repotest

import (
	"testing"

	"simplepay/internal/repositories"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
// The pool is pinned to one connection so the in-memory database survives for
// the whole test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := repositories.ConfigurePool(db, repositories.DBConfig{MaxIdleConns: 1, MaxOpenConns: 1}); err != nil {
		t.Fatalf("configuring test database pool: %v", err)
	}
	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { repositories.Close(db) })

	return db
}
