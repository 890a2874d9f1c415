// Package presence owns the per-device registry: registration, the
// heartbeat, and the editor/device command-flag handshake. It writes only
// to the presence table, never to the document, so heartbeats can run at
// any frequency without contending with editor saves.
package presence

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/panjf2000/ants/v2"
	gonet "github.com/shirou/gopsutil/net"
	"go.uber.org/zap"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/store"
	"github.com/talkincode/toughkiosk/pkg/metrics"
)

const latencySampleWindow = 16

// Service drives one device's presence row and exposes the editor-side
// command operations. DeviceId is empty on a pure hub process; editor
// operations work regardless.
type Service struct {
	store    store.PresenceStore
	pool     *ants.Pool
	deviceId string
	version  string

	mu      sync.Mutex
	samples []float64 // recent remote round-trip times, milliseconds
}

func NewService(st store.PresenceStore, pool *ants.Pool, deviceId, version string) *Service {
	return &Service{store: st, pool: pool, deviceId: deviceId, version: version}
}

// Register upserts this device into the registry, idempotently. When the
// hub rejects the full row (schema drift on an older deployment) it
// retries once with the minimal field subset. Both failures together are
// non-fatal: the device keeps operating local-only and the caller only
// logs a warning.
func (s *Service) Register(ctx context.Context, displayName, deviceType string) error {
	reg := &domain.KioskRegistry{
		DeviceId:   s.deviceId,
		Name:       displayName,
		DeviceType: deviceType,
		Status:     domain.DeviceStatusOnline,
		LastSeen:   time.Now(),
		Network:    networkDescriptor(),
		Version:    s.version,
	}
	err := s.store.UpsertKiosk(ctx, reg)
	if err == nil {
		return nil
	}

	zap.S().Warnf("registration rejected, retrying with minimal fields: %s", err.Error())
	if err2 := s.store.UpsertKioskMinimal(ctx, s.deviceId, displayName, deviceType); err2 != nil {
		zap.S().Warnf("minimal registration failed, continuing local-only: %s", err2.Error())
		return err2
	}
	return nil
}

// RecordLatency feeds a remote round-trip sample into the signal-quality
// estimate. The sync engine calls this after every fetch.
func (s *Service) RecordLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, float64(d.Milliseconds()))
	if len(s.samples) > latencySampleWindow {
		s.samples = s.samples[len(s.samples)-latencySampleWindow:]
	}
}

// Heartbeat proves liveness: current timestamp, online status and the
// bucketed signal estimate. A supplied snapshot URL is attached and the
// device's own requestSnapshot flag cleared, acknowledging the command.
// Fire and forget; a failed beat just waits for the next tick.
func (s *Service) Heartbeat(snapshotURL string) {
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		fields := map[string]interface{}{
			"status":    domain.DeviceStatusOnline,
			"last_seen": time.Now(),
			"signal":    s.signalEstimate(),
			"network":   networkDescriptor(),
			"version":   s.version,
		}
		if snapshotURL != "" {
			fields["snapshot_url"] = snapshotURL
			fields["request_snapshot"] = false
		}
		if err := s.store.UpdateKioskFields(ctx, s.deviceId, fields); err != nil {
			zap.S().Debugf("heartbeat failed: %s", err.Error())
			return
		}
		metrics.IncrCounter("presence_heartbeat")
	}
	if s.pool != nil {
		if err := s.pool.Submit(task); err != nil {
			zap.S().Debugf("heartbeat not scheduled: %s", err.Error())
		}
		return
	}
	go task()
}

// AcknowledgeRestart clears the restart flag after the device acted on it.
// Only the owning device calls this; the editor only ever sets the flag.
func (s *Service) AcknowledgeRestart(ctx context.Context) error {
	return s.store.UpdateKioskFields(ctx, s.deviceId, map[string]interface{}{
		"restart_requested": false,
	})
}

// Editor-side operations below. Each flag has exactly one setter (the
// editor) and one clearer (the owning device).

func (s *Service) RequestRestart(ctx context.Context, deviceId string) error {
	return s.store.UpdateKioskFields(ctx, deviceId, map[string]interface{}{
		"restart_requested": true,
	})
}

func (s *Service) RequestSnapshot(ctx context.Context, deviceId string) error {
	return s.store.UpdateKioskFields(ctx, deviceId, map[string]interface{}{
		"request_snapshot": true,
	})
}

// UpdateAssignment sets the editor-owned descriptive fields.
func (s *Service) UpdateAssignment(ctx context.Context, deviceId, name, zone, location, notes string) error {
	return s.store.UpdateKioskFields(ctx, deviceId, map[string]interface{}{
		"name":     name,
		"zone":     zone,
		"location": location,
		"notes":    notes,
	})
}

// Remove deletes a registry row. Never called automatically; explicit
// editor action only.
func (s *Service) Remove(ctx context.Context, deviceId string) error {
	return s.store.DeleteKiosk(ctx, deviceId)
}

func (s *Service) List(ctx context.Context) ([]domain.KioskRegistry, error) {
	return s.store.ListKiosks(ctx)
}

// signalEstimate buckets the median recent round-trip time into coarse
// tiers: 4 excellent, 3 good, 2 fair, 1 poor, 0 unknown.
func (s *Service) signalEstimate() int {
	s.mu.Lock()
	samples := append([]float64(nil), s.samples...)
	s.mu.Unlock()

	if len(samples) == 0 {
		return 0
	}
	median, err := stats.Median(samples)
	if err != nil {
		return 0
	}
	return BucketSignal(median)
}

// BucketSignal maps a round-trip median in milliseconds to a signal tier.
func BucketSignal(medianMs float64) int {
	switch {
	case medianMs < 50:
		return 4
	case medianMs < 150:
		return 3
	case medianMs < 400:
		return 2
	default:
		return 1
	}
}

// networkDescriptor names the first usable network interface, e.g.
// "eth0" or "wlan0 (wireless)". Best effort.
func networkDescriptor() string {
	ifaces, err := gonet.Interfaces()
	if err != nil {
		return ""
	}
	for _, ifc := range ifaces {
		up, loopback := false, false
		for _, f := range ifc.Flags {
			if f == "up" {
				up = true
			}
			if f == "loopback" {
				loopback = true
			}
		}
		if !up || loopback || len(ifc.Addrs) == 0 {
			continue
		}
		name := ifc.Name
		if strings.HasPrefix(name, "wl") {
			return name + " (wireless)"
		}
		return name
	}
	return ""
}
