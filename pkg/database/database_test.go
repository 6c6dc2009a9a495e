package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/courier/pkg/database"
)

func newSystem(t *testing.T) database.System {
	t.Helper()
	cfg := database.Config{
		Host:            "localhost",
		Port:            5432,
		Name:            "courier",
		User:            "courier",
		SSLMode:         "disable",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		ConnMaxLifetime: "10m",
		ConnTimeout:     "1s",
	}

	sys, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { sys.Connection().Close() })
	return sys
}

func TestNewConfiguresPool(t *testing.T) {
	sys := newSystem(t)

	if got := sys.Connection().Stats().MaxOpenConnections; got != 12 {
		t.Errorf("MaxOpenConnections = %d, want 12", got)
	}
}

func TestNotReadyBeforeStart(t *testing.T) {
	sys := newSystem(t)

	if sys.Ready() {
		t.Error("Ready() = true before Start")
	}
	if err := sys.Ping(context.Background()); !errors.Is(err, database.ErrNotReady) {
		t.Errorf("Ping() error = %v, want ErrNotReady", err)
	}
}
