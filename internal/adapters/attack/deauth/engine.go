// Package deauth sends broadcast deauthentication frames and tests packet
// injection through aireplay-ng.
package deauth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

const injectionMarker = "Injection is working!"

// Engine implements ports.Deauthenticator.
type Engine struct {
	runner   ports.CommandRunner
	channels ports.ChannelSetter
	logger   *slog.Logger

	Aireplay string
	now      func() time.Time
}

var _ ports.Deauthenticator = (*Engine)(nil)

func NewEngine(runner ports.CommandRunner, channels ports.ChannelSetter, logger *slog.Logger) *Engine {
	return &Engine{
		runner:   runner,
		channels: channels,
		logger:   logger,
		Aireplay: "aireplay-ng",
		now:      time.Now,
	}
}

// Deauth runs one bounded deauthentication call. Failures are reported in
// the result, never returned.
func (e *Engine) Deauth(ctx context.Context, cfg domain.DeauthConfig) domain.DeauthResult {
	res := domain.DeauthResult{BSSID: cfg.TargetBSSID, PacketCount: cfg.PacketCount, Timestamp: e.now()}
	if err := cfg.Validate(); err != nil {
		res.Diagnostic = err.Error()
		return res
	}
	res.BSSID, _ = domain.NormalizeBSSID(cfg.TargetBSSID)
	res.PacketCount = cfg.PacketCount

	ctx, span := telemetry.Tracer().Start(ctx, "deauth")
	span.SetAttributes(attribute.String("bssid", res.BSSID), attribute.Int("packets", cfg.PacketCount))
	defer span.End()

	e.tune(ctx, cfg.Interface, cfg.Channel)

	out, err := e.runner.Run(ctx, ports.Command{
		Name:    e.Aireplay,
		Args:    []string{"--deauth", strconv.Itoa(cfg.PacketCount), "-a", res.BSSID, cfg.Interface},
		Timeout: domain.DeauthTimeout,
	})
	switch {
	case err != nil:
		res.Diagnostic = err.Error()
	case !out.Success():
		res.Diagnostic = strings.TrimSpace(out.Combined())
		if res.Diagnostic == "" {
			res.Diagnostic = fmt.Sprintf("exit status %d", out.ExitCode)
		}
	default:
		res.Success = true
	}

	telemetry.AttacksTotal.WithLabelValues("deauth", telemetry.Outcome(res.Success)).Inc()
	if res.Success {
		e.logger.Info("deauthentication sent", "bssid", res.BSSID, "packets", cfg.PacketCount)
	} else {
		e.logger.Error("deauthentication failed", "bssid", res.BSSID, "diagnostic", res.Diagnostic)
	}
	return res
}

// TestInjection runs aireplay-ng's injection self-test.
func (e *Engine) TestInjection(ctx context.Context, iface string) domain.InjectionResult {
	res := domain.InjectionResult{Interface: iface}
	out, err := e.runner.Run(ctx, ports.Command{
		Name:    e.Aireplay,
		Args:    []string{"--test", iface},
		Timeout: domain.InjectionTestTimeout,
	})
	res.Output = strings.TrimSpace(out.Combined())
	if err != nil {
		e.logger.Error("injection test failed", "iface", iface, "error", err)
		if res.Output == "" {
			res.Output = err.Error()
		}
		return res
	}
	res.Working = strings.Contains(out.Stdout, injectionMarker) || strings.Contains(out.Stderr, injectionMarker)
	e.logger.Info("injection test finished", "iface", iface, "working", res.Working)
	return res
}

func (e *Engine) tune(ctx context.Context, iface string, channel int) {
	if channel <= 0 || e.channels == nil {
		return
	}
	if err := e.channels.SetChannel(ctx, iface, channel); err != nil {
		e.logger.Warn("could not set channel", "iface", iface, "channel", channel, "error", err)
	}
}
