package domain

import "time"

const (
	DeviceTypeKiosk  = "kiosk"
	DeviceTypeMobile = "mobile"

	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
)

// KioskRegistry is one presence row per device. It lives in its own table
// because heartbeats write far more often than the document changes;
// embedding fleet state in the document blob would clobber editor saves.
//
// Write ownership per field: telemetry fields are written only by the
// owning device, zone/name/notes and the command flags are set only by the
// editor, and each command flag is cleared only by the owning device once
// fulfilled. That single-writer split is what makes the table safe without
// locks.
type KioskRegistry struct {
	DeviceId         string    `json:"device_id" gorm:"primaryKey;column:device_id"`
	Name             string    `json:"name"`
	DeviceType       string    `json:"device_type"`
	Status           string    `json:"status"`
	LastSeen         time.Time `json:"last_seen" gorm:"index"`
	Signal           int       `json:"signal"`
	Network          string    `json:"network"`
	Version          string    `json:"version"`
	Location         string    `json:"location"`
	Zone             string    `json:"zone"`
	Notes            string    `json:"notes"`
	RestartRequested bool      `json:"restart_requested"`
	RequestSnapshot  bool      `json:"request_snapshot"`
	SnapshotUrl      string    `json:"snapshot_url"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName Specify table name
func (KioskRegistry) TableName() string {
	return "kiosk_registry"
}

// Online derives liveness from the last-seen timestamp. The stored Status
// column is advisory display text and must not be trusted over this.
func (k *KioskRegistry) Online(now time.Time, threshold time.Duration) bool {
	return now.Sub(k.LastSeen) < threshold
}

// FleetEntry is the document-side view of a presence row, produced by the
// fetch overlay. Field names follow the document wire format.
type FleetEntry struct {
	DeviceId         string `json:"deviceId"`
	Name             string `json:"name"`
	DeviceType       string `json:"deviceType"`
	Status           string `json:"status"`
	LastSeen         string `json:"lastSeen"`
	Signal           int    `json:"signal"`
	Network          string `json:"network"`
	Version          string `json:"version"`
	Location         string `json:"location"`
	Zone             string `json:"zone"`
	Notes            string `json:"notes"`
	RestartRequested bool   `json:"restartRequested"`
	RequestSnapshot  bool   `json:"requestSnapshot"`
	SnapshotUrl      string `json:"snapshotUrl,omitempty"`
}

// ToFleetEntry translates a presence row into its document representation.
// Translation only, no merging with whatever the blob contained.
func (k *KioskRegistry) ToFleetEntry() FleetEntry {
	return FleetEntry{
		DeviceId:         k.DeviceId,
		Name:             k.Name,
		DeviceType:       k.DeviceType,
		Status:           k.Status,
		LastSeen:         k.LastSeen.UTC().Format(time.RFC3339),
		Signal:           k.Signal,
		Network:          k.Network,
		Version:          k.Version,
		Location:         k.Location,
		Zone:             k.Zone,
		Notes:            k.Notes,
		RestartRequested: k.RestartRequested,
		RequestSnapshot:  k.RequestSnapshot,
		SnapshotUrl:      k.SnapshotUrl,
	}
}
