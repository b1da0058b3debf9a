package app

import (
	"context"
	"fmt"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/adapters/attack/crack"
	"github.com/lcalzada-xor/netraptor/internal/adapters/attack/deauth"
	"github.com/lcalzada-xor/netraptor/internal/adapters/attack/handshake"
	"github.com/lcalzada-xor/netraptor/internal/adapters/attack/wps"
	"github.com/lcalzada-xor/netraptor/internal/adapters/scan"
	"github.com/lcalzada-xor/netraptor/internal/config"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/core/services/inventory"
	"github.com/lcalzada-xor/netraptor/internal/core/services/session"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

// wpsPrescan is the WPS discovery window used before an attack when no WPS
// list exists yet.
const wpsPrescan = 15 * time.Second

// operations holds the per-run backends.
type operations struct {
	app  *Application
	cfg  *config.Config
	sess *session.Session

	scanner   *scan.Selector
	wash      ports.WPSScanner
	bluetooth ports.BluetoothScanner
	deauther  ports.Deauthenticator
	capturer  ports.HandshakeCapturer
	wps       ports.WPSAttacker
	cracker   ports.Cracker
}

func newOperations(app *Application, sess *session.Session, reporter ports.ProgressReporter) *operations {
	cfg := app.Config
	runner, logger := app.runner, app.logger

	monitor := scan.NewMonitorDriver(runner, sess, reporter, logger)
	monitor.Airodump = cfg.Tools.Airodump
	managed := scan.NewManagedDriver(runner, reporter, logger)
	managed.Iwlist = cfg.Tools.Iwlist

	selector := scan.NewSelector(app.adapter, monitor, managed)
	selector.MonitorAvailable = sess.Tools().Has(domain.PkgAircrack)

	wash := scan.NewWashScanner(runner, logger)
	wash.Wash = cfg.Tools.Wash

	deauther := deauth.NewEngine(runner, app.adapter, logger)
	deauther.Aireplay = cfg.Tools.Aireplay

	capturer := handshake.NewCapturer(runner, app.adapter, sess, reporter, logger)
	capturer.Airodump = cfg.Tools.Airodump
	capturer.Aireplay = cfg.Tools.Aireplay
	capturer.Aircrack = cfg.Tools.Aircrack

	attacker := wps.NewEngine(runner, app.adapter, sess, reporter, logger)
	attacker.Reaver = cfg.Tools.Reaver
	attacker.OutputDir = cfg.OutputDir

	cracker := crack.NewAircrack(runner, logger)
	cracker.Path = cfg.Tools.Aircrack

	return &operations{
		app:       app,
		cfg:       cfg,
		sess:      sess,
		scanner:   selector,
		wash:      wash,
		bluetooth: scan.NewHcitoolScanner(runner, logger),
		deauther:  deauther,
		capturer:  capturer,
		wps:       attacker,
		cracker:   cracker,
	}
}

// run executes the requested operations in their fixed order.
func (o *operations) run(ctx context.Context) {
	cfg := o.cfg
	steps := []struct {
		name    string
		enabled bool
		fn      func(context.Context) error
	}{
		{"scan", cfg.Scan, o.scan},
		{"wps-test", cfg.WPSTest, o.wpsTest},
		{"wpa-audit", cfg.WPAAudit, o.wpaAudit},
		{"evil-twin", cfg.EvilTwin, o.evilTwin},
		{"bluetooth", cfg.Bluetooth, o.bluetoothScan},
		{"injection-test", cfg.InjectionTest, o.injectionTest},
		{"crack-handshake", cfg.CrackHandshake != "", o.crackHandshake},
		{"wps-attack", cfg.WPSAttack != "", o.wpsAttack},
		{"deauth", cfg.Deauth != "", o.deauth},
		{"handshake", cfg.Handshake != "", o.handshake},
	}
	for _, s := range steps {
		if s.enabled {
			o.app.step(ctx, o.sess, s.name, s.fn)
		}
	}
}

func (o *operations) iface() string {
	return o.sess.Adapter().ActiveName()
}

func (o *operations) scanDuration() time.Duration {
	return time.Duration(o.cfg.Timeout) * time.Second
}

func (o *operations) require(pkg string) error {
	if !o.sess.Tools().Has(pkg) {
		return fmt.Errorf("%w: %s", domain.ErrToolMissing, pkg)
	}
	return nil
}

func (o *operations) scan(ctx context.Context) error {
	records, backend, err := o.scanner.Scan(ctx, o.iface(), o.scanDuration())
	o.sess.MergeNetworks(records)

	n := len(o.sess.Networks())
	telemetry.NetworksDiscovered.Set(float64(n))
	o.app.logger.Info("networks discovered", "backend", backend, "networks", n)
	return err
}

func (o *operations) wpsTest(ctx context.Context) error {
	if err := o.require(domain.PkgReaver); err != nil {
		return err
	}
	records, err := o.wash.ScanWPS(ctx, o.iface(), o.scanDuration())
	if err != nil {
		return err
	}
	o.sess.SetWPS(records)
	return nil
}

func (o *operations) wpaAudit(ctx context.Context) error {
	networks := o.sess.Networks()
	if len(networks) == 0 {
		o.app.logger.Warn("no networks to audit, run --scan first")
	}
	findings := inventory.AuditWPA(networks, o.sess.WPS())
	o.sess.SetAudit(findings)
	o.app.logger.Info("wpa audit finished", "findings", len(findings))
	return nil
}

func (o *operations) evilTwin(ctx context.Context) error {
	findings := inventory.DetectEvilTwins(o.sess.Networks())
	o.sess.SetEvilTwins(findings)
	for _, f := range findings {
		o.app.logger.Warn("possible evil twin", "essid", f.ESSID, "bssids", f.BSSIDs,
			"impersonation", f.Impersonation, "shared_channel", f.SharedChannel)
	}
	return nil
}

func (o *operations) bluetoothScan(ctx context.Context) error {
	if err := o.require(domain.PkgBluetooth); err != nil {
		return err
	}
	devices, err := o.bluetooth.ScanBluetooth(ctx, o.scanDuration())
	if err != nil {
		return err
	}
	o.sess.SetBluetooth(devices)
	return nil
}

func (o *operations) injectionTest(ctx context.Context) error {
	if err := o.require(domain.PkgAircrack); err != nil {
		return err
	}
	res := o.deauther.TestInjection(ctx, o.iface())
	o.sess.SetInjection(res)
	if !res.Working {
		return fmt.Errorf("packet injection is not working on %s", res.Interface)
	}
	return nil
}

func (o *operations) crackHandshake(ctx context.Context) error {
	if err := o.require(domain.PkgAircrack); err != nil {
		return err
	}
	res, err := o.cracker.Crack(ctx, o.cfg.CrackHandshake, o.cfg.Wordlist)
	if err != nil {
		return err
	}
	o.sess.AddCrack(res)
	return nil
}

func (o *operations) wpsAttack(ctx context.Context) error {
	if err := o.require(domain.PkgReaver); err != nil {
		return err
	}
	target := o.cfg.WPSAttack

	if len(o.sess.WPS()) == 0 {
		o.app.logger.Info("scanning for WPS networks first", "duration", wpsPrescan)
		records, err := o.wash.ScanWPS(ctx, o.iface(), wpsPrescan)
		if err != nil {
			o.app.logger.Warn("wps pre-scan failed", "error", err)
		}
		o.sess.SetWPS(records)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !inventory.HasWPS(o.sess.WPS(), target) {
		o.app.logger.Warn("target not seen advertising WPS", "bssid", target)
	}

	var essid string
	if rec, ok := inventory.Lookup(o.sess.Networks(), target); ok && !rec.IsHidden() {
		essid = rec.ESSID
	}

	res, err := o.wps.Attack(ctx, domain.WPSAttackConfig{
		TargetBSSID: target,
		Interface:   o.iface(),
		Channel:     o.cfg.Channel,
		ESSID:       essid,
		Ceiling:     o.cfg.WPSCeiling,
	})
	if err != nil {
		return err
	}
	o.sess.AddWPSResult(res)
	if !res.Success() {
		o.app.logger.Info("wps attack ended without a PIN", "reason", res.Reason)
	}
	return nil
}

func (o *operations) deauth(ctx context.Context) error {
	if err := o.require(domain.PkgAircrack); err != nil {
		return err
	}
	res := o.deauther.Deauth(ctx, domain.DeauthConfig{
		TargetBSSID: o.cfg.Deauth,
		Channel:     o.cfg.Channel,
		PacketCount: o.cfg.DeauthCount,
		Interface:   o.iface(),
	})
	o.sess.AddDeauth(res)
	if !res.Success {
		return fmt.Errorf("deauth %s failed: %s", res.BSSID, res.Diagnostic)
	}
	return nil
}

func (o *operations) handshake(ctx context.Context) error {
	if err := o.require(domain.PkgAircrack); err != nil {
		return err
	}
	artifact, err := o.capturer.Capture(ctx, domain.HandshakeConfig{
		TargetBSSID: o.cfg.Handshake,
		Channel:     o.cfg.Channel,
		Interface:   o.iface(),
		Timeout:     o.scanDuration(),
		OutputDir:   o.cfg.OutputDir,
	})
	if err != nil {
		return err
	}
	o.sess.AddHandshake(*artifact)
	return nil
}
