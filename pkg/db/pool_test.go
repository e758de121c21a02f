package db

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig("todos.db", "sqlite3")

	if config.DSN != "todos.db" {
		t.Errorf("DSN = %v, want todos.db", config.DSN)
	}
	if config.DriverName != "sqlite3" {
		t.Errorf("DriverName = %v, want sqlite3", config.DriverName)
	}
	if config.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %v, want 25", config.MaxOpenConns)
	}
	if config.MaxIdleConns != 5 {
		t.Errorf("MaxIdleConns = %v, want 5", config.MaxIdleConns)
	}
	if config.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want 5m", config.ConnMaxLifetime)
	}
	if config.ConnMaxIdleTime != 10*time.Minute {
		t.Errorf("ConnMaxIdleTime = %v, want 10m", config.ConnMaxIdleTime)
	}
	if config.PingTimeout != 5*time.Second {
		t.Errorf("PingTimeout = %v, want 5s", config.PingTimeout)
	}
}

func TestNewPoolValidation(t *testing.T) {
	tests := []struct {
		name   string
		config PoolConfig
	}{
		{"empty DSN", PoolConfig{DriverName: "sqlite3", MaxOpenConns: 10}},
		{"empty driver", PoolConfig{DSN: "todos.db", MaxOpenConns: 10}},
		{"zero max open", PoolConfig{DSN: "todos.db", DriverName: "sqlite3"}},
		{"negative max idle", PoolConfig{
			DSN: "todos.db", DriverName: "sqlite3", MaxOpenConns: 10, MaxIdleConns: -1,
		}},
		{"idle exceeds open", PoolConfig{
			DSN: "todos.db", DriverName: "sqlite3", MaxOpenConns: 5, MaxIdleConns: 10,
		}},
		{"negative lifetime", PoolConfig{
			DSN: "todos.db", DriverName: "sqlite3", MaxOpenConns: 10, ConnMaxLifetime: -time.Second,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPool(tt.config); err == nil {
				t.Error("NewPool() should fail fast on invalid configuration")
			}
		})
	}
}

func TestNewPoolSQLite(t *testing.T) {
	pool, err := NewPool(DefaultPoolConfig(":memory:", "sqlite3"))
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	defer pool.Close()

	if pool.DB() == nil {
		t.Fatal("expected a usable *sql.DB")
	}
	if pool.Stats().MaxOpenConnections != 25 {
		t.Errorf("expected pool limits applied, got %d", pool.Stats().MaxOpenConnections)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestPoolNilSafety(t *testing.T) {
	var pool *Pool
	if err := pool.Close(); err != nil {
		t.Errorf("Close on nil pool must be a no-op, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("DB() on nil pool should panic")
		}
	}()
	pool.DB()
}
