// Package store holds the storage edges of the system: the canonical
// document row and presence table in Postgres, the per-device bbolt cache,
// the SFTP asset store and the rasterizer client. Components above depend
// on the small interfaces defined here, not on gorm directly.
package store

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talkincode/toughkiosk/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DocumentChannel is the Postgres NOTIFY channel for document updates.
const DocumentChannel = "toughkiosk_document"

// DocumentStore is the canonical single-row document storage.
type DocumentStore interface {
	LoadRaw(ctx context.Context) (map[string]interface{}, error)
	SaveDocument(ctx context.Context, doc *domain.Document) error
}

// PresenceStore is the per-device registry table.
type PresenceStore interface {
	ListKiosks(ctx context.Context) ([]domain.KioskRegistry, error)
	GetKiosk(ctx context.Context, deviceId string) (*domain.KioskRegistry, error)
	UpsertKiosk(ctx context.Context, reg *domain.KioskRegistry) error
	UpsertKioskMinimal(ctx context.Context, deviceId, name, deviceType string) error
	UpdateKioskFields(ctx context.Context, deviceId string, fields map[string]interface{}) error
	DeleteKiosk(ctx context.Context, deviceId string) error
}

// GormStore implements DocumentStore and PresenceStore over Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var (
	_ DocumentStore = (*GormStore)(nil)
	_ PresenceStore = (*GormStore)(nil)
)

// LoadRaw reads the canonical row and decodes the blob without imposing
// any schema; normalization is the migrate package's job.
func (s *GormStore) LoadRaw(ctx context.Context) (map[string]interface{}, error) {
	var row domain.DocumentRow
	if err := s.db.WithContext(ctx).First(&row, domain.DocumentRowID).Error; err != nil {
		return nil, errors.Wrap(err, "load document row")
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(row.Data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode document blob")
	}
	return raw, nil
}

// SaveDocument upserts the whole document into the fixed row. Callers are
// responsible for stripping the transient fleet field first; last write
// wins at document granularity. A pg_notify on the document channel lets
// connected devices pick the change up without waiting for the next poll.
func (s *GormStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}
	row := domain.DocumentRow{
		ID:        domain.DocumentRowID,
		Data:      data,
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return errors.Wrap(err, "upsert document row")
	}

	// Best effort; devices that miss it catch up on the next poll.
	s.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", DocumentChannel, row.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return nil
}

func (s *GormStore) ListKiosks(ctx context.Context) ([]domain.KioskRegistry, error) {
	var rows []domain.KioskRegistry
	err := s.db.WithContext(ctx).Order("device_id").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list kiosks")
	}
	return rows, nil
}

func (s *GormStore) GetKiosk(ctx context.Context, deviceId string) (*domain.KioskRegistry, error) {
	var row domain.KioskRegistry
	err := s.db.WithContext(ctx).Where("device_id = ?", deviceId).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) UpsertKiosk(ctx context.Context, reg *domain.KioskRegistry) error {
	reg.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "device_type", "status", "last_seen", "signal",
			"network", "version", "updated_at",
		}),
	}).Create(reg).Error
}

// UpsertKioskMinimal registers a device with the smallest field subset the
// oldest deployed schema understands. Fallback path for registration
// against a hub whose registry table predates the telemetry columns.
func (s *GormStore) UpsertKioskMinimal(ctx context.Context, deviceId, name, deviceType string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO kiosk_registry (device_id, name, device_type, status, last_seen, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (device_id) DO UPDATE SET
		   name = EXCLUDED.name, status = EXCLUDED.status,
		   last_seen = EXCLUDED.last_seen, updated_at = EXCLUDED.updated_at`,
		deviceId, name, deviceType, domain.DeviceStatusOnline, now, now, now,
	).Error
}

// UpdateKioskFields writes a field-scoped update. Both the editor (zone,
// name, command flags) and the owning device (telemetry, flag clears) go
// through here; the single-writer-per-field convention keeps them from
// stepping on each other.
func (s *GormStore) UpdateKioskFields(ctx context.Context, deviceId string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&domain.KioskRegistry{}).
		Where("device_id = ?", deviceId).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) DeleteKiosk(ctx context.Context, deviceId string) error {
	return s.db.WithContext(ctx).Where("device_id = ?", deviceId).
		Delete(&domain.KioskRegistry{}).Error
}
