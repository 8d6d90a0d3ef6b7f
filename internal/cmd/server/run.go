// Package serverrun assembles and runs the redscout server process.
package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/redscout/redscout/internal/classify"
	cfgpkg "github.com/redscout/redscout/internal/config"
	"github.com/redscout/redscout/internal/poller"
	"github.com/redscout/redscout/internal/reddit"
	"github.com/redscout/redscout/internal/runtime"
	httpserver "github.com/redscout/redscout/internal/server/http"
	pebblestore "github.com/redscout/redscout/internal/storage/pebble"
	"github.com/redscout/redscout/internal/worker"
	logpkg "github.com/redscout/redscout/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// DisablePoller skips Reddit polling; items only arrive over HTTP.
	DisablePoller bool
	// DisableWorkers skips the in-process worker pool; external workers
	// drive the queue over HTTP instead.
	DisableWorkers bool
}

// Run starts the HTTP server, sweeper, poller, and worker pool, then
// blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one in case the
	// caller's context is not signal-aware.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lcfg := &logpkg.Config{
		Level:  getenvDefault("REDSCOUT_LOG_LEVEL", "info"),
		Format: getenvDefault("REDSCOUT_LOG_FORMAT", "text"),
	}
	logger, err := logpkg.ApplyConfig(lcfg)
	if err != nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := opts.Config
	logger.Info("Starting redscout server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("dataDir", opts.DataDir),
		logpkg.Str("level", lcfg.Level),
		logpkg.Str("format", lcfg.Format),
	)

	rt.Queue().StartSweeper(cfg.SweepInterval(), cfg.LeaseTimeout(), cfg.RetentionMaxAge())

	hsrv := httpserver.New(rt)

	var wg sync.WaitGroup
	if !opts.DisablePoller {
		fetcher := reddit.NewClient(cfg.RedditBaseURL, cfg.UserAgent, 15*time.Second)
		p := poller.New(rt.Store(), rt.Keywords(), fetcher, rt.Queue(), cfg.FetchLimit, logger)
		hsrv.SetPoller(p)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(sctx, cfg.PollInterval())
		}()
	}

	if !opts.DisableWorkers && cfg.Classifier.BaseURL != "" {
		classifier, err := classify.NewClient(classify.Options{
			BaseURL: cfg.Classifier.BaseURL,
			APIKey:  cfg.Classifier.APIKey,
			Model:   cfg.Classifier.Model,
			Timeout: cfg.Classifier.Timeout(),
		})
		if err != nil {
			return err
		}
		for i := 0; i < cfg.Workers; i++ {
			w := worker.New(rt.Queue(), classifier, logger, worker.Options{
				PollInterval: cfg.WorkerPollInterval(),
			})
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.Run(sctx)
			}()
		}
	} else if !opts.DisableWorkers {
		logger.Warn("no classifier configured, in-process workers disabled")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			logger.Error("http server error", logpkg.Err(err))
		}
	}()

	<-sctx.Done()
	// Shut servers down before closing the runtime to avoid handler
	// writes racing the DB close.
	hsrv.Close()
	rt.Queue().StopSweeper()
	wg.Wait()
	return nil
}
