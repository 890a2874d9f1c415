package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/talkincode/toughkiosk/internal/domain"
)

type fakeRegistry struct {
	mu           sync.Mutex
	rows         map[string]*domain.KioskRegistry
	rejectFull   bool
	minimalCalls int
	fieldWrites  []map[string]interface{}
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{rows: map[string]*domain.KioskRegistry{}}
}

func (f *fakeRegistry) ListKiosks(ctx context.Context) ([]domain.KioskRegistry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.KioskRegistry, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRegistry) GetKiosk(ctx context.Context, id string) (*domain.KioskRegistry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistry) UpsertKiosk(ctx context.Context, reg *domain.KioskRegistry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectFull {
		return errors.New("column does not exist")
	}
	cp := *reg
	f.rows[reg.DeviceId] = &cp
	return nil
}

func (f *fakeRegistry) UpsertKioskMinimal(ctx context.Context, id, name, typ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minimalCalls++
	f.rows[id] = &domain.KioskRegistry{DeviceId: id, Name: name, DeviceType: typ}
	return nil
}

func (f *fakeRegistry) UpdateKioskFields(ctx context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return errors.New("not found")
	}
	f.fieldWrites = append(f.fieldWrites, fields)
	if v, has := fields["restart_requested"]; has {
		r.RestartRequested = v.(bool)
	}
	if v, has := fields["request_snapshot"]; has {
		r.RequestSnapshot = v.(bool)
	}
	if v, has := fields["snapshot_url"]; has {
		r.SnapshotUrl = v.(string)
	}
	if v, has := fields["last_seen"]; has {
		r.LastSeen = v.(time.Time)
	}
	return nil
}

func (f *fakeRegistry) DeleteKiosk(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func TestRegisterIdempotent(t *testing.T) {
	reg := newFakeRegistry()
	svc := NewService(reg, nil, "LOC-001", "1.0.0")

	for i := 0; i < 3; i++ {
		if err := svc.Register(context.Background(), "Front door", "kiosk"); err != nil {
			t.Fatalf("register #%d: %v", i, err)
		}
	}
	if len(reg.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(reg.rows))
	}
}

func TestRegisterMinimalFallback(t *testing.T) {
	reg := newFakeRegistry()
	reg.rejectFull = true
	svc := NewService(reg, nil, "LOC-001", "1.0.0")

	if err := svc.Register(context.Background(), "Front door", "kiosk"); err != nil {
		t.Fatalf("register should succeed through the minimal path: %v", err)
	}
	if reg.minimalCalls != 1 {
		t.Errorf("minimal upserts = %d, want 1", reg.minimalCalls)
	}
	if _, ok := reg.rows["LOC-001"]; !ok {
		t.Error("row missing after minimal registration")
	}
}

func TestCommandFlagHandshake(t *testing.T) {
	reg := newFakeRegistry()
	device := NewService(reg, nil, "LOC-001", "1.0.0")
	editor := NewService(reg, nil, "", "1.0.0")
	ctx := context.Background()

	if err := device.Register(ctx, "Front door", "kiosk"); err != nil {
		t.Fatal(err)
	}

	// Editor sets, device clears.
	if err := editor.RequestRestart(ctx, "LOC-001"); err != nil {
		t.Fatal(err)
	}
	if !reg.rows["LOC-001"].RestartRequested {
		t.Fatal("restart flag not set")
	}
	if err := device.AcknowledgeRestart(ctx); err != nil {
		t.Fatal(err)
	}
	if reg.rows["LOC-001"].RestartRequested {
		t.Error("restart flag not cleared by the owning device")
	}

	if err := editor.RequestSnapshot(ctx, "LOC-001"); err != nil {
		t.Fatal(err)
	}
	if !reg.rows["LOC-001"].RequestSnapshot {
		t.Fatal("snapshot flag not set")
	}

	// The snapshot URL travels with a heartbeat, which also clears the flag.
	device.Heartbeat("https://cdn.example/snap.png")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		reg.mu.Lock()
		done := !reg.rows["LOC-001"].RequestSnapshot
		reg.mu.Unlock()
		if done {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if reg.rows["LOC-001"].RequestSnapshot {
		t.Error("snapshot flag not cleared by the heartbeat")
	}
	if reg.rows["LOC-001"].SnapshotUrl != "https://cdn.example/snap.png" {
		t.Errorf("snapshot url = %q", reg.rows["LOC-001"].SnapshotUrl)
	}
}

func TestHeartbeatPlainBeat(t *testing.T) {
	reg := newFakeRegistry()
	svc := NewService(reg, nil, "LOC-001", "1.0.0")
	if err := svc.Register(context.Background(), "Front door", "kiosk"); err != nil {
		t.Fatal(err)
	}

	svc.Heartbeat("")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		reg.mu.Lock()
		n := len(reg.fieldWrites)
		reg.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.fieldWrites) == 0 {
		t.Fatal("heartbeat never reached the store")
	}
	fields := reg.fieldWrites[len(reg.fieldWrites)-1]
	if _, has := fields["snapshot_url"]; has {
		t.Error("plain beat must not touch the snapshot url")
	}
	if _, has := fields["request_snapshot"]; has {
		t.Error("plain beat must not touch the snapshot flag")
	}
}

func TestBucketSignal(t *testing.T) {
	cases := []struct {
		ms   float64
		want int
	}{
		{10, 4},
		{49, 4},
		{50, 3},
		{149, 3},
		{150, 2},
		{399, 2},
		{400, 1},
		{5000, 1},
	}
	for _, c := range cases {
		if got := BucketSignal(c.ms); got != c.want {
			t.Errorf("BucketSignal(%v) = %d, want %d", c.ms, got, c.want)
		}
	}
}

func TestSignalEstimateUnknownWithoutSamples(t *testing.T) {
	svc := NewService(newFakeRegistry(), nil, "LOC-001", "1.0.0")
	if got := svc.signalEstimate(); got != 0 {
		t.Errorf("estimate without samples = %d, want 0", got)
	}
	svc.RecordLatency(30 * time.Millisecond)
	svc.RecordLatency(40 * time.Millisecond)
	svc.RecordLatency(35 * time.Millisecond)
	if got := svc.signalEstimate(); got != 4 {
		t.Errorf("estimate = %d, want 4", got)
	}
}

func TestOnlineThreshold(t *testing.T) {
	now := time.Now()
	fresh := domain.KioskRegistry{LastSeen: now.Add(-30 * time.Second)}
	stale := domain.KioskRegistry{LastSeen: now.Add(-300 * time.Second)}

	if !fresh.Online(now, 120*time.Second) {
		t.Error("device seen 30s ago should be online at a 120s threshold")
	}
	if stale.Online(now, 120*time.Second) {
		t.Error("device seen 300s ago should be offline at a 120s threshold")
	}
}
