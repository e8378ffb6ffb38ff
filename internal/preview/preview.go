// Package preview serves a generated site locally and republishes it when
// the watched input paths change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docpublish/internal/metrics"
)

// Options configure the preview server.
type Options struct {
	Addr       string   // listen address, e.g. ":8080"
	SiteDir    string   // generated site root to serve
	WatchPaths []string // input files/directories that trigger a republish

	// Rebuild republishes the site. It runs in a single worker; overlapping
	// change bursts coalesce into one pending rebuild.
	Rebuild func(ctx context.Context) error

	// Registry, when set, exposes its metrics on /metrics.
	Registry *prom.Registry
}

// publishStatus tracks the last rebuild result for the status endpoint.
type publishStatus struct {
	mu        sync.RWMutex
	lastError error
	goodBuild bool
}

func (s *publishStatus) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

func (s *publishStatus) setSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = nil
	s.goodBuild = true
}

func (s *publishStatus) current() (err error, goodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError, s.goodBuild
}

// Serve runs the preview loop until ctx is canceled: an initial publish, a
// static file server, and a filesystem watcher that debounces change bursts
// into republish requests.
func Serve(ctx context.Context, opts Options) error {
	if opts.Rebuild == nil {
		return errors.New("preview requires a rebuild function")
	}

	status := &publishStatus{}
	if err := opts.Rebuild(ctx); err != nil {
		slog.Error("initial publish failed", slog.Any("error", err))
		status.setError(err)
	} else {
		status.setSuccess()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()
	for _, p := range opts.WatchPaths {
		if err := addWatchRecursive(watcher, p); err != nil {
			return err
		}
	}

	rebuildReq, trigger := newDebouncer(300 * time.Millisecond)

	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           newHandler(opts.SiteDir, opts.Registry, status),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("preview server listening", slog.String("addr", opts.Addr),
			slog.String("dir", opts.SiteDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return rebuildWorker(gctx, opts.Rebuild, status, rebuildReq)
	})

	g.Go(func() error {
		return watchLoop(gctx, watcher, trigger)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newHandler routes the generated site plus the preview's own endpoints.
func newHandler(siteDir string, registry *prom.Registry, status *publishStatus) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(siteDir)))
	mux.HandleFunc("/-/status", func(w http.ResponseWriter, _ *http.Request) {
		err, goodBuild := status.current()
		switch {
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "publish error: %v\n", err)
		case !goodBuild:
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "no successful publish yet")
		default:
			fmt.Fprintln(w, "ok")
		}
	})
	if registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(registry))
	}
	return mux
}

// newDebouncer coalesces change bursts: trigger restarts a timer, and only
// its expiry enqueues one rebuild request.
func newDebouncer(delay time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	return req, trigger
}

// rebuildWorker serializes republish requests; a request arriving during a
// running rebuild queues exactly one follow-up.
func rebuildWorker(ctx context.Context, rebuild func(context.Context) error, status *publishStatus, req chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-req:
			slog.Info("change detected; republishing site")
			if err := rebuild(ctx); err != nil {
				slog.Warn("republish failed", slog.Any("error", err))
				status.setError(err)
				continue
			}
			status.setSuccess()
		}
	}
}

// watchLoop forwards filesystem events into the debouncer, adding newly
// created directories to the watch set.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addWatchRecursive(watcher, ev.Name)
				}
			}
			slog.Debug("file change detected", slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.Any("error", err))
		}
	}
}

// addWatchRecursive watches a path; directories are walked so nested changes
// are seen.
func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch path %s: %w", root, err)
	}
	if !info.IsDir() {
		return w.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", slog.String("dir", path), slog.Any("error", err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters events for hidden, swap, and editor temp files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	return base == "Thumbs.db"
}
