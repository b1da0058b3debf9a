// Package session owns the mutable state of one audit run and guarantees
// that the run is torn down exactly once.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/core/services/inventory"
)

// Session is the explicitly constructed context of one run. Collections are
// guarded by mu because the status server reads them concurrently.
type Session struct {
	ID        string
	StartedAt time.Time

	logger  *slog.Logger
	adapter ports.AdapterController

	mu         sync.RWMutex
	state      domain.AdapterState
	tools      domain.ToolInventory
	networks   map[string]domain.NetworkRecord
	wps        []domain.WPSRecord
	bluetooth  []domain.BluetoothDevice
	handshakes []domain.CaptureArtifact
	wpsResults []domain.AttackResult
	deauths    []domain.DeauthResult
	injection  *domain.InjectionResult
	cracks     []domain.CrackResult
	evilTwins  []domain.EvilTwinFinding
	audit      []domain.AuditFinding
	errs       []string
	temps      []string
	tempSet    map[string]struct{}
	active     ports.Process
	hooks      []func()
	closed     bool

	teardown sync.Once
}

var _ ports.ResourceTracker = (*Session)(nil)

// New creates a session for iface. adapter is used at teardown to restore
// the interface and may be nil when no mode change will ever happen.
func New(iface string, tools domain.ToolInventory, adapter ports.AdapterController, logger *slog.Logger) *Session {
	return &Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		logger:    logger.With("session", iface),
		adapter:   adapter,
		state:     domain.AdapterState{Name: iface, Active: iface, OriginalMode: domain.ModeUnknown},
		tools:     tools,
		networks:  make(map[string]domain.NetworkRecord),
		tempSet:   make(map[string]struct{}),
	}
}

// Adapter returns a copy of the adapter state.
func (s *Session) Adapter() domain.AdapterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetAdapter replaces the adapter state after a transition.
func (s *Session) SetAdapter(st domain.AdapterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Session) Tools() domain.ToolInventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tools
}

// MergeNetworks reconciles a fresh scan into the session inventory. Raw
// readings are kept so later scans still compare against real power.
func (s *Session) MergeNetworks(scan map[string]domain.NetworkRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inventory.Merge(s.networks, scan)
}

// Networks returns a finalized copy of the inventory keyed by BSSID.
func (s *Session) Networks() map[string]domain.NetworkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.networksLocked()
}

func (s *Session) networksLocked() map[string]domain.NetworkRecord {
	out := make(map[string]domain.NetworkRecord, len(s.networks))
	for k, v := range s.networks {
		out[k] = v
	}
	inventory.Finalize(out)
	return out
}

func (s *Session) SetWPS(records []domain.WPSRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wps = append([]domain.WPSRecord(nil), records...)
}

func (s *Session) WPS() []domain.WPSRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.WPSRecord(nil), s.wps...)
}

func (s *Session) SetBluetooth(devices []domain.BluetoothDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bluetooth = append([]domain.BluetoothDevice(nil), devices...)
}

// AddHandshake appends a capture artifact. Artifacts are never removed.
func (s *Session) AddHandshake(a domain.CaptureArtifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handshakes = append(s.handshakes, a)
}

func (s *Session) Handshakes() []domain.CaptureArtifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CaptureArtifact(nil), s.handshakes...)
}

func (s *Session) AddWPSResult(r domain.AttackResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wpsResults = append(s.wpsResults, r)
}

func (s *Session) AddDeauth(r domain.DeauthResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deauths = append(s.deauths, r)
}

func (s *Session) SetInjection(r domain.InjectionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injection = &r
}

func (s *Session) AddCrack(r domain.CrackResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cracks = append(s.cracks, r)
}

func (s *Session) SetEvilTwins(f []domain.EvilTwinFinding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evilTwins = f
}

func (s *Session) SetAudit(f []domain.AuditFinding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = f
}

// RecordError keeps an operation failure for the report.
func (s *Session) RecordError(op string, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, fmt.Sprintf("%s: %v", op, err))
}

// TrackTemp registers paths to delete at teardown. Paths tracked after
// teardown are removed immediately.
func (s *Session) TrackTemp(paths ...string) {
	s.mu.Lock()
	closed := s.closed
	if !closed {
		for _, p := range paths {
			if _, ok := s.tempSet[p]; ok {
				continue
			}
			s.tempSet[p] = struct{}{}
			s.temps = append(s.temps, p)
		}
	}
	s.mu.Unlock()

	if closed {
		for _, p := range paths {
			s.remove(p)
		}
	}
}

// SetActive records the subprocess currently running on behalf of the
// session. A process started after teardown is terminated at once.
func (s *Session) SetActive(p ports.Process) {
	s.mu.Lock()
	closed := s.closed
	if !closed {
		s.active = p
	}
	s.mu.Unlock()

	if closed && p != nil {
		_ = p.Terminate()
	}
}

// ClearActive forgets p if it is still the active process.
func (s *Session) ClearActive(p ports.Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == p {
		s.active = nil
	}
}

// OnClose registers fn to run at the end of teardown.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Closed reports whether teardown has started.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Teardown terminates the active subprocess, restores the adapter when its
// mode was negotiated, deletes every tracked temporary path and runs close
// hooks. Only the first call has any effect; failures are logged.
func (s *Session) Teardown(ctx context.Context) {
	s.teardown.Do(func() {
		s.mu.Lock()
		s.closed = true
		active := s.active
		s.active = nil
		state := s.state
		temps := append([]string(nil), s.temps...)
		hooks := append([]func(){}, s.hooks...)
		s.mu.Unlock()

		if active != nil {
			if err := active.Terminate(); err != nil {
				s.logger.Warn("failed to terminate active process", "error", err)
			}
		}

		if state.Negotiated && s.adapter != nil {
			s.adapter.RestoreMode(ctx, state)
		}

		for _, p := range temps {
			s.remove(p)
		}

		for _, fn := range hooks {
			fn()
		}
		s.logger.Info("session torn down", "temp_files", len(temps))
	})
}

func (s *Session) remove(p string) {
	if err := os.RemoveAll(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to remove temporary file", "path", p, "error", err)
	}
}
