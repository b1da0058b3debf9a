package app

import (
	"context"
	"net"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/netraptor/internal/adapters/reporting"
	"github.com/lcalzada-xor/netraptor/internal/adapters/storage"
	"github.com/lcalzada-xor/netraptor/internal/adapters/web"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/core/services/session"
)

// openStorage opens the session history database. A failure only disables
// history.
func (app *Application) openStorage() ports.Storage {
	path := app.Config.DBPath
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		app.logger.Warn("session history disabled", "db", path, "error", err)
		return nil
	}
	store, err := storage.NewSQLiteAdapter(path)
	if err != nil {
		app.logger.Warn("session history disabled", "db", path, "error", err)
		return nil
	}
	return store
}

// persist stores everything the session collected.
func (app *Application) persist(ctx context.Context, store ports.Storage, sess *session.Session) {
	rep := sess.Report(app.Config.Timeout)
	id := rep.ScanInfo.SessionID

	errs := 0
	check := func(what string, err error) {
		if err != nil {
			errs++
			app.logger.Error("failed to store session data", "what", what, "error", err)
		}
	}

	check("session", store.SaveSession(ctx, rep.ScanInfo))
	check("networks", store.SaveNetworks(ctx, id, rep.Networks))
	check("wps", store.SaveWPS(ctx, id, rep.WPSNetworks))
	for _, a := range rep.Handshakes {
		check("capture", store.SaveCapture(ctx, id, a))
	}
	for _, r := range rep.WPSResults {
		check("attack", store.SaveAttackResult(ctx, id, r))
	}
	if errs == 0 {
		app.logger.Info("session stored", "db", app.Config.DBPath, "session_id", id)
	}
}

// writeReports renders the report in every configured format.
func (app *Application) writeReports(sess *session.Session) {
	writers, err := reporting.ForFormat(app.Config.Output)
	if err != nil {
		app.logger.Error("report skipped", "error", err)
		return
	}
	rep := sess.Report(app.Config.Timeout)
	stamp := app.now().Format(reporting.StampLayout)

	for _, w := range writers {
		path, err := w.Write(rep, app.Config.OutputDir, stamp)
		if err != nil {
			app.logger.Error("failed to write report", "format", w.Format(), "error", err)
			continue
		}
		app.logger.Info("report written", "format", w.Format(), "path", path)
	}
}

// startStatusServer serves the status API when an address is configured and
// returns the hub that streams progress to websocket clients. store, when
// open, backs the history endpoint.
func (app *Application) startStatusServer(ctx context.Context, sess *session.Session, store ports.Storage) *web.Hub {
	addr := app.Config.StatusAddr
	if addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		app.logger.Warn("status server disabled", "addr", addr, "error", err)
		return nil
	}

	hub := web.NewHub(app.logger)
	srv := web.NewServer(addr, sess, hub, app.logger)
	srv.ScanTimeout = app.Config.Timeout
	if store != nil {
		srv.History = store
	}
	sess.OnClose(func() { hub.Closed(sess.ID) })

	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			app.logger.Error("status server error", "error", err)
		}
	}()
	return hub
}

// startHealth serves gRPC health. The session reports NOT_SERVING once torn
// down.
func (app *Application) startHealth(ctx context.Context, sess *session.Session) {
	addr := app.Config.GRPCAddr
	if addr == "" {
		return
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		app.logger.Warn("grpc health disabled", "addr", addr, "error", err)
		return
	}

	health := web.NewHealth(app.logger)
	sess.OnClose(func() { health.SetServing(false) })

	go func() {
		if err := health.Serve(ctx, ln); err != nil {
			app.logger.Error("grpc health server error", "error", err)
		}
	}()
}
