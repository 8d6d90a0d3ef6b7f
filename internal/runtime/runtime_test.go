package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/redscout/redscout/internal/config"
	"github.com/redscout/redscout/internal/queue"
	pebblestore "github.com/redscout/redscout/internal/storage/pebble"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestFacadesShareStore(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	ctx := context.Background()

	if _, err := rt.Keywords().Add(ctx, "golang"); err != nil {
		t.Fatalf("add keyword: %v", err)
	}
	if _, err := rt.Queue().Enqueue(ctx, []queue.Payload{{ID: "p1", Title: "t"}}, "golang"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	stats, err := rt.Queue().Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Pending != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := rt.Queue().Enqueue(ctx, []queue.Payload{{ID: "p1", Title: "t"}}, "golang"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rt2, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rt2.Close()
	stats, err := rt2.Queue().Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 1 {
		t.Fatalf("stats after reopen: %+v", stats)
	}
}
