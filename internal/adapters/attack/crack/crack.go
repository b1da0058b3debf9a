// Package crack delegates dictionary attacks on captured handshakes to
// aircrack-ng.
package crack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/adapters/parser"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

// Aircrack implements ports.Cracker.
type Aircrack struct {
	runner ports.CommandRunner
	logger *slog.Logger

	Path string

	// Timeout bounds a dictionary run. Zero leaves only the context.
	Timeout time.Duration
}

var _ ports.Cracker = (*Aircrack)(nil)

func NewAircrack(runner ports.CommandRunner, logger *slog.Logger) *Aircrack {
	return &Aircrack{runner: runner, logger: logger, Path: "aircrack-ng", Timeout: time.Hour}
}

func (a *Aircrack) Crack(ctx context.Context, file, wordlist string) (domain.CrackResult, error) {
	res := domain.CrackResult{File: file, Wordlist: wordlist}
	for _, p := range []string{file, wordlist} {
		if _, err := os.Stat(p); err != nil {
			return res, fmt.Errorf("crack: %w", err)
		}
	}

	out, err := a.runner.Run(ctx, ports.Command{
		Name:    a.Path,
		Args:    []string{"-w", wordlist, file},
		Timeout: a.Timeout,
	})
	if err != nil && !errors.Is(err, domain.ErrTimeout) {
		return res, fmt.Errorf("crack: %w", err)
	}
	res.Key, res.Found = parser.KeyFound(out.Combined())

	telemetry.AttacksTotal.WithLabelValues("crack", telemetry.Outcome(res.Found)).Inc()
	if res.Found {
		a.logger.Info("key found", "file", file)
	} else {
		a.logger.Info("key not in wordlist", "file", file, "wordlist", wordlist, "timed_out", err != nil)
	}
	return res, nil
}
