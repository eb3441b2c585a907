package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConnectionConfig verifies default configuration values.
func TestDefaultConnectionConfig(t *testing.T) {
	config := DefaultConnectionConfig("/test/path.db")

	if config.Path != "/test/path.db" {
		t.Errorf("Path = %q, want /test/path.db", config.Path)
	}
	if config.BusyTimeout != 5*time.Second {
		t.Errorf("BusyTimeout = %v, want 5s", config.BusyTimeout)
	}
	if config.MaxOpenConns != 1 {
		t.Errorf("MaxOpenConns = %d, want 1", config.MaxOpenConns)
	}
}

// TestNewSQLiteConnection_EmptyPath verifies error on empty path.
func TestNewSQLiteConnection_EmptyPath(t *testing.T) {
	conn, err := NewSQLiteConnection(context.Background(), ConnectionConfig{})
	if err == nil {
		conn.Close()
		t.Fatal("expected error for empty path, got nil")
	}
}

// TestNewSQLiteConnection_WAL verifies the file is created in WAL mode.
func TestNewSQLiteConnection_WAL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	conn, err := NewSQLiteConnection(context.Background(), DefaultConnectionConfig(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteConnection() error = %v", err)
	}
	defer conn.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	var mode string
	if err := conn.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := conn.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("failed to query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}
