// Package dbtest opens throw-away SQLite databases migrated with the
// storefront schema.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/db"
)

var seq atomic.Int64

// Open returns an in-memory database private to the test. extraOrderTables
// are migrated alongside orders.
func Open(t testing.TB, extraOrderTables ...string) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, seq.Add(1))

	gdb, err := gorm.Open(sqlite.Open(dsn), db.Config(zerolog.Nop()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb, extraOrderTables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
