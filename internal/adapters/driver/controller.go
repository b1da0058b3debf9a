// Package driver negotiates wireless adapter modes by shelling out to the
// standard wireless tools.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

const (
	cmdTimeout     = 10 * time.Second
	airmonTimeout  = 30 * time.Second
	restoreTimeout = 60 * time.Second
)

// ProcessKiller kills processes by executable name.
type ProcessKiller interface {
	KillByName(ctx context.Context, names ...string) int
}

// Tools holds overridable binary names.
type Tools struct {
	Airmon   string
	Iwconfig string
}

func (t Tools) withDefaults() Tools {
	if t.Airmon == "" {
		t.Airmon = "airmon-ng"
	}
	if t.Iwconfig == "" {
		t.Iwconfig = "iwconfig"
	}
	return t
}

// Controller implements ports.AdapterController.
type Controller struct {
	runner ports.CommandRunner
	killer ProcessKiller
	tools  Tools
	logger *slog.Logger
}

var _ ports.AdapterController = (*Controller)(nil)

func NewController(runner ports.CommandRunner, killer ProcessKiller, tools Tools, logger *slog.Logger) *Controller {
	return &Controller{
		runner: runner,
		killer: killer,
		tools:  tools.withDefaults(),
		logger: logger.With("component", "adapter"),
	}
}

// QueryMode asks iwconfig first and falls back to `iw dev <if> info`.
func (c *Controller) QueryMode(ctx context.Context, iface string) domain.Mode {
	res, err := c.runner.Run(ctx, ports.Command{Name: c.tools.Iwconfig, Args: []string{iface}, Timeout: cmdTimeout})
	if err == nil {
		if m := domain.ClassifyMode(res.Stdout); m != domain.ModeUnknown {
			return m
		}
	}

	res, err = c.runner.Run(ctx, ports.Command{Name: "iw", Args: []string{"dev", iface, "info"}, Timeout: cmdTimeout})
	if err != nil || !res.Success() {
		return domain.ModeUnknown
	}
	return domain.ClassifyMode(res.Stdout)
}

// SetChannel tunes iface, preferring iwconfig and falling back to iw.
func (c *Controller) SetChannel(ctx context.Context, iface string, channel int) error {
	if channel <= 0 {
		return domain.ErrChannelRequired
	}
	ch := strconv.Itoa(channel)

	res, err := c.runner.Run(ctx, ports.Command{Name: c.tools.Iwconfig, Args: []string{iface, "channel", ch}, Timeout: cmdTimeout})
	if err == nil && res.Success() {
		return nil
	}

	res, err = c.runner.Run(ctx, ports.Command{Name: "iw", Args: []string{iface, "set", "channel", ch}, Timeout: cmdTimeout})
	if err != nil {
		return fmt.Errorf("set channel %d on %s: %w", channel, iface, err)
	}
	if !res.Success() {
		return fmt.Errorf("set channel %d on %s: %s", channel, iface, res.Combined())
	}
	return nil
}

// setMode switches the interface type with iwconfig, then iw.
func (c *Controller) setMode(ctx context.Context, iface string, mode domain.Mode) bool {
	res, err := c.runner.Run(ctx, ports.Command{Name: c.tools.Iwconfig, Args: []string{iface, "mode", string(mode)}, Timeout: cmdTimeout})
	if err == nil && res.Success() {
		return true
	}
	res, err = c.runner.Run(ctx, ports.Command{Name: "iw", Args: []string{iface, "set", "type", string(mode)}, Timeout: cmdTimeout})
	return err == nil && res.Success()
}

// link brings iface up or down with ip, falling back to ifconfig.
func (c *Controller) link(ctx context.Context, iface string, up bool) {
	state := "down"
	if up {
		state = "up"
	}
	res, err := c.runner.Run(ctx, ports.Command{Name: "ip", Args: []string{"link", "set", iface, state}, Timeout: cmdTimeout})
	if err == nil && res.Success() {
		return
	}
	c.run(ctx, "ifconfig", iface, state)
}

// run executes a best-effort command and logs failures at debug level.
func (c *Controller) run(ctx context.Context, name string, args ...string) (ports.Result, bool) {
	res, err := c.runner.Run(ctx, ports.Command{Name: name, Args: args, Timeout: cmdTimeout})
	if err != nil {
		c.logger.Debug("command failed", "cmd", name, "args", args, "error", err)
		return res, false
	}
	if !res.Success() {
		c.logger.Debug("command exited non-zero", "cmd", name, "args", args, "code", res.ExitCode)
		return res, false
	}
	return res, true
}
