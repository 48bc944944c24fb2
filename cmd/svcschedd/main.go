// Command svcschedd is the scheduler daemon: it owns the object graph, the
// reactor event loop, the restarter registry, and optionally the unit-file
// loader, sqlite audit log, and admin HTTP API. Grounded on the reference
// engine's cmd/server/main.go (config flags, graceful shutdown via
// signal.NotifyContext).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/InitWare/Neo-InitWare/internal/adminapi"
	"github.com/InitWare/Neo-InitWare/internal/audit"
	"github.com/InitWare/Neo-InitWare/internal/config"
	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/internal/logging"
	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/internal/restarter"
	"github.com/InitWare/Neo-InitWare/internal/restarter/script"
	"github.com/InitWare/Neo-InitWare/internal/scheduler"
	"github.com/InitWare/Neo-InitWare/internal/unitfile"
)

func main() {
	cfg := config.DefaultDaemonConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Admin API listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.UnitFileDir, "unit-dir", cfg.UnitFileDir, "Directory of YAML unit definitions")
	flag.DurationVar(&cfg.JobTimeout, "job-timeout", cfg.JobTimeout, "Default per-job dispatch timeout")
	flag.StringVar(&cfg.AuditDBPath, "audit-db", cfg.AuditDBPath, "Sqlite path for the job audit log (empty disables it)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	noAdminAPI := flag.Bool("no-admin-api", false, "Disable the admin HTTP API")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	g := graph.New(logger)
	loop := reactor.New(logger)
	registry := restarter.NewRegistry(logger)

	schedCfg := scheduler.DefaultConfig()
	schedCfg.DefaultJobTimeout = cfg.JobTimeout
	sched := scheduler.New(g, registry, loop, schedCfg, logger)

	registry.Register(restarter.NewTargetRestarter(loop, sched, logger))
	registry.Register(script.New("service", fallbackServiceScript, loop, sched, logger))

	if cfg.UnitFileDir != "" {
		sched.SetLoader(unitfile.New(cfg.UnitFileDir, g, logger))
	}

	var auditStore *audit.Store
	if cfg.AuditDBPath != "" {
		var err error
		auditStore, err = audit.Open(cfg.AuditDBPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open audit db: %v\n", err)
			os.Exit(1)
		}
		defer auditStore.Close()
		if err := auditStore.Migrate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "migrate audit db: %v\n", err)
			os.Exit(1)
		}
		sched.SetAuditor(auditStore)
		logger.Info("audit log ready", "path", cfg.AuditDBPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("reactor stopped", "error", err)
		}
	}()

	var httpServer *http.Server
	if !*noAdminAPI {
		adminSrv := adminapi.New(g, sched, loop, auditStore, logger)
		httpServer = &http.Server{Addr: cfg.Addr, Handler: adminSrv.Handler()}
		go func() {
			logger.Info("admin API starting", "addr", cfg.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("admin API failed", "error", err)
			}
		}()
	}

	logger.Info("svcschedd started")
	<-ctx.Done()
	logger.Info("shutting down")

	// The reactor goroutine returns as soon as ctx is cancelled; wait for
	// it before touching the scheduler directly, since every scheduler
	// method must otherwise be called from that goroutine.
	<-loopDone
	sched.Shutdown(context.Background())

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "admin API shutdown error: %v\n", err)
		}
	}
	logger.Info("svcschedd stopped")
}

// fallbackServiceScript is a minimal always-accept JS restarter, registered
// as the restarter for every "service" unit; it exists so the daemon is
// runnable out of the box against unit definitions that reference plain
// "service" units.
const fallbackServiceScript = `
function start(unit) { return true; }
function stop(unit) { return true; }
`
