// Package runtime wires storage and the service facades for a
// single-node instance.
package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/redscout/redscout/internal/config"
	"github.com/redscout/redscout/internal/keywords"
	"github.com/redscout/redscout/internal/queue"
	"github.com/redscout/redscout/internal/storage/kv"
	pebblestore "github.com/redscout/redscout/internal/storage/pebble"
	"github.com/redscout/redscout/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        log.Logger
}

// Runtime owns the Pebble store and the facades built on top of it.
type Runtime struct {
	db       *pebblestore.DB
	store    kv.Store
	queue    *queue.Queue
	keywords *keywords.Registry
	config   cfgpkg.Config
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval})
	if err != nil {
		return nil, err
	}
	store := kv.NewPebbleStore(db)
	rt := &Runtime{
		db:       db,
		store:    store,
		queue:    queue.New(store, opts.Logger, queue.Options{MaxAttempts: opts.Config.MaxAttempts}),
		keywords: keywords.NewRegistry(store),
		config:   opts.Config,
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	r.queue.StopSweeper()
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// Store exposes the kv adapter (internal use only).
func (r *Runtime) Store() kv.Store { return r.store }

// Queue returns the work queue facade.
func (r *Runtime) Queue() *queue.Queue { return r.queue }

// Keywords returns the keyword registry.
func (r *Runtime) Keywords() *keywords.Registry { return r.keywords }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
