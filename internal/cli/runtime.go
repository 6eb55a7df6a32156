// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"linolayout/internal/catalog"
	"linolayout/internal/config"
	"linolayout/internal/instance"
	"linolayout/internal/logging"
	"linolayout/internal/tracing"
	"linolayout/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Runtime is the long-running part shared by `serve` and the TUI: the
// catalog store, its file watcher and the web server, guarded by the
// single-instance lock of the config directory.
type Runtime struct {
	Config config.Config
	Logs   *logging.Manager
	Store  *catalog.Store
	Tracer *tracing.Provider
	Web    *web.Server

	logger   *logging.ScopedLogger
	paths    []string
	instance *instance.Instance
	watcher  *catalog.Watcher
	listener net.Listener
}

// OpenRuntime loads config and catalogs, takes the instance lock and binds
// the web server. Call Run to start serving and Close when done.
func OpenRuntime(ctx context.Context, configDir string) (*Runtime, error) {
	dir := config.ResolveDir(configDir)
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg}
	opened := false
	defer func() {
		if !opened {
			rt.Close()
		}
	}()

	if rt.instance, err = instance.Acquire(dir); err != nil {
		return nil, err
	}
	rt.Logs, err = logging.NewManager(logging.Config{
		FilePath:   filepath.Join(dir, "linolayout.log"),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	rt.logger = rt.Logs.For("app")

	if rt.Tracer, err = tracing.New(ctx, cfg.Tracing); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	rt.paths = cfg.ResolveCatalogs()
	if len(rt.paths) == 0 {
		return nil, errors.New("no catalogs configured in config.yaml")
	}
	start := time.Now()
	c, err := catalog.Load(ctx, rt.paths...)
	if err != nil {
		return nil, err
	}
	rt.logger.Timed(start, "catalog loaded", "files", len(c.Files()), "layouts", len(c.Names()))
	rt.Store = catalog.NewStore(c)

	if rt.watcher, err = catalog.NewWatcher(rt.paths, rt.Logs.For("catalog"), rt.Store.Update); err != nil {
		return nil, err
	}

	rt.Web = web.New(web.Config{
		Bind:  cfg.Web.Bind,
		Port:  cfg.Web.Port,
		Roles: cfg.Roles,
	}, rt.Store, rt.Logs, rt.Tracer)
	if rt.listener, err = rt.Web.Listen(); err != nil {
		return nil, err
	}
	if err := rt.instance.Publish(rt.Web.Addr()); err != nil {
		rt.logger.Error("failed to write port file", "error", err)
	}
	opened = true
	return rt, nil
}

// Run serves and watches until ctx is cancelled or either fails.
func (rt *Runtime) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := rt.Web.Serve(rt.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := rt.watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("catalog watcher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return rt.Web.Shutdown(sctx)
	})

	err := g.Wait()
	if err != nil {
		rt.logger.Error("runtime stopped", "error", err)
	}
	return err
}

// Reload loads the catalogs again and hands the result to the store,
// which notifies subscribers either way.
func (rt *Runtime) Reload(ctx context.Context) error {
	start := time.Now()
	c, err := catalog.Load(ctx, rt.paths...)
	rt.Store.Update(c, err)
	if err != nil {
		rt.logger.Error("catalog reload failed", "error", err)
		return err
	}
	rt.logger.Info("catalog reloaded", "layouts", len(c.Names()), "version", rt.Store.Version(), "elapsed", time.Since(start))
	return nil
}

// Close releases everything OpenRuntime acquired. It tolerates a partly
// opened runtime.
func (rt *Runtime) Close() {
	if rt == nil {
		return
	}
	if rt.watcher != nil {
		_ = rt.watcher.Close()
	}
	if rt.listener != nil {
		_ = rt.listener.Close()
	}
	if rt.Tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = rt.Tracer.Shutdown(ctx)
		cancel()
	}
	if rt.logger != nil {
		rt.logger.Info("application stopped")
	}
	if rt.Logs != nil {
		_ = rt.Logs.Close()
	}
	rt.instance.Release()
}
