package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/courier/pkg/lifecycle"
)

type flag struct{ ready atomic.Bool }

func (f *flag) Ready() bool { return f.ready.Load() }

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	db := &flag{}
	lc.Track(db)

	if lc.Ready() {
		t.Error("Ready() before startup")
	}

	lc.OnStartup(func() { db.ready.Store(true) })
	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("Ready() = false after startup with ready subsystem")
	}

	db.ready.Store(false)
	if lc.Ready() {
		t.Error("Ready() = true with unready subsystem")
	}
}

func TestStartupHooksRun(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() { count.Add(1) })
	}
	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks ran %d times, want 3", got)
	}
}

func TestShutdown(t *testing.T) {
	lc := lifecycle.New()

	var closed atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		closed.Store(true)
	})
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !closed.Load() {
		t.Error("shutdown hook did not run")
	}
	if lc.Context().Err() == nil {
		t.Error("context not cancelled")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(300 * time.Millisecond)
	})

	if err := lc.Shutdown(20 * time.Millisecond); err == nil {
		t.Error("Shutdown() error = nil, want timeout")
	}
}
