// Package app wires the adapters together and runs one audit session.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/netraptor/internal/adapters/driver"
	"github.com/lcalzada-xor/netraptor/internal/adapters/progress"
	"github.com/lcalzada-xor/netraptor/internal/adapters/system"
	"github.com/lcalzada-xor/netraptor/internal/config"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/core/services/session"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

// Application holds the components of one run.
type Application struct {
	Config  *config.Config
	Session *session.Session

	logger   *slog.Logger
	runner   ports.CommandRunner
	killer   driver.ProcessKiller
	progress ports.ProgressReporter
	adapter  ports.AdapterController

	// Preconditions, replaceable in tests.
	requireRoot func() error
	discover    func(ctx context.Context, runner ports.CommandRunner, logger *slog.Logger) []string
	now         func() time.Time
}

// New creates an Application backed by the real system.
func New(cfg *config.Config, logger *slog.Logger) *Application {
	return &Application{
		Config:      cfg,
		logger:      logger,
		runner:      system.NewExecRunner(),
		killer:      system.NewProcessKiller(logger),
		progress:    progress.NewConsole(os.Stderr),
		requireRoot: system.RequireRoot,
		discover:    system.DiscoverWireless,
		now:         time.Now,
	}
}

// Run executes the requested operations. Only precondition failures are
// returned; operation failures end up in the report. Teardown runs on every
// path once the session exists.
func (app *Application) Run(ctx context.Context) error {
	telemetry.InitMetrics()
	cfg := app.Config

	// 1. Preconditions, before anything is mutated
	if err := app.requireRoot(); err != nil {
		return err
	}
	iface, err := app.selectInterface(ctx)
	if err != nil {
		return err
	}

	// 2. Session
	tools := system.ProbeTools(app.runner, cfg.Tools.Binaries(), app.logger)
	app.adapter = driver.NewController(app.runner, app.killer, driver.Tools{
		Airmon:   cfg.Tools.Airmon,
		Iwconfig: cfg.Tools.Iwconfig,
	}, app.logger)

	sess := session.New(iface, tools, app.adapter, app.logger)
	app.Session = sess
	app.logger.Info("session started", "session_id", sess.ID, "iface", iface)

	store := app.openStorage()
	if store != nil {
		defer store.Close()
	}

	// Servers outlive teardown so health can report NOT_SERVING.
	serveCtx, stopServers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopServers()
	defer sess.Teardown(ctx)
	defer app.finishProgress()

	reporters := progress.Multi{app.progress}
	if hub := app.startStatusServer(serveCtx, sess, store); hub != nil {
		reporters = append(reporters, hub)
	}
	app.startHealth(serveCtx, sess)

	// 3. Adapter
	if cfg.NeedsMonitor(tools.Has(domain.PkgAircrack)) {
		app.negotiateMonitor(ctx, sess)
	}
	if cfg.MonitorOnly {
		st := sess.Adapter()
		app.logger.Info("monitor mode setup completed", "iface", st.ActiveName(), "monitor", st.Monitor)
		return nil
	}

	// 4. Operations
	ops := newOperations(app, sess, reporters)
	ops.run(ctx)

	if ctx.Err() != nil {
		app.logger.Warn("interrupted, skipping report", "error", ctx.Err())
		return nil
	}

	// 5. Outputs
	if cfg.WantsReport() {
		app.writeReports(sess)
	}
	if store != nil {
		app.persist(ctx, store, sess)
	}
	app.logger.Info("operation completed", "errors", len(sess.Report(cfg.Timeout).Errors))
	return nil
}

func (app *Application) selectInterface(ctx context.Context) (string, error) {
	if app.Config.Interface != "" {
		return app.Config.Interface, nil
	}
	names := app.discover(ctx, app.runner, app.logger)
	if len(names) == 0 {
		return "", domain.ErrNoInterface
	}
	app.logger.Info("available interfaces", "interfaces", names, "selected", names[0])
	return names[0], nil
}

// negotiateMonitor captures the original mode first, then tries to enter
// monitor mode. Degradation is logged and the run continues managed.
func (app *Application) negotiateMonitor(ctx context.Context, sess *session.Session) {
	ctx, span := telemetry.Tracer().Start(ctx, "adapter.negotiate")
	defer span.End()

	st := sess.Adapter()
	st.OriginalMode = app.adapter.QueryMode(ctx, st.Name)

	active, degraded := app.adapter.EnterMonitorMode(ctx, st.Name)
	st.Active = active
	st.Monitor = !degraded
	st.Negotiated = true
	sess.SetAdapter(st)

	span.SetAttributes(
		attribute.String("iface", st.Name),
		attribute.String("active", active),
		attribute.Bool("degraded", degraded),
	)
	if degraded {
		sess.RecordError("monitor", fmt.Errorf("monitor mode unavailable on %s, continuing in managed mode", st.Name))
	}
}

// step runs one operation unless the run was cancelled. Failures are kept
// for the report.
func (app *Application) step(ctx context.Context, sess *session.Session, name string, fn func(ctx context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	ctx, span := telemetry.Tracer().Start(ctx, "op."+name)
	defer span.End()

	start := app.now()
	err := fn(ctx)
	telemetry.OperationDuration.WithLabelValues(name).Observe(app.now().Sub(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("failed", true))
		sess.RecordError(name, err)
		app.logger.Error("operation failed", "operation", name, "error", err)
	}
}

func (app *Application) finishProgress() {
	if c, ok := app.progress.(interface{ Done() }); ok {
		c.Done()
	}
}
