package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Driver:       DriverSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrations(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"watchlist", "seasons_watched", "episodes_watched"} {
		var name string
		err := db.Connection().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s to exist: %v", table, err)
		}
	}
	if db.Driver() != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", db.Driver())
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		db, err := Open(context.Background(), Config{DatabasePath: path})
		if err != nil {
			t.Fatalf("open #%d failed: %v", i+1, err)
		}
		db.Close()
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverPostgres, ConnectAttempts: 2, ConnectDelay: time.Millisecond})
	if err == nil {
		t.Fatal("expected error when dsn is empty")
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	got := pg.Rebind("SELECT * FROM watchlist WHERE user_id = ? AND id = ?")
	want := "SELECT * FROM watchlist WHERE user_id = $1 AND id = $2"
	if got != want {
		t.Fatalf("Rebind = %q, want %q", got, want)
	}

	lite := &DB{driver: DriverSQLite}
	if q := lite.Rebind("a = ?"); q != "a = ?" {
		t.Fatalf("sqlite query should be unchanged, got %q", q)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupTestDB(t)
	insert := `INSERT INTO watchlist (user_id, tmdb_id, media_type, title, created_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now().UTC()

	if _, err := db.Connection().Exec(insert, "u1", 100, "movie", "Dune", now); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := db.Connection().Exec(insert, "u1", 100, "movie", "Dune", now)
	if err == nil {
		t.Fatal("expected unique violation on duplicate insert")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected IsUniqueViolation to recognise %v", err)
	}
	if IsUniqueViolation(errors.New("boom")) || IsUniqueViolation(nil) {
		t.Fatal("unrelated errors must not be reported as unique violations")
	}
}
