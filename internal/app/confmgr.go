package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/talkincode/toughkiosk/internal/domain"
)

// DefaultSettingsCacheTTL bounds how stale a cached setting may be.
const DefaultSettingsCacheTTL = 30 * time.Second

// ConfigManager reads hub_config rows with a short-lived in-memory cache;
// settings are consulted on every poll tick, hitting the table each time
// would be wasteful.
type ConfigManager struct {
	db  *gorm.DB
	ttl time.Duration

	mu     sync.Mutex
	values map[string]string
	loaded time.Time
}

func NewConfigManager(db *gorm.DB, ttl time.Duration) *ConfigManager {
	return &ConfigManager{db: db, ttl: ttl}
}

func (m *ConfigManager) get(category, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil || time.Since(m.loaded) > m.ttl {
		m.reload()
	}
	return m.values[category+"."+name]
}

func (m *ConfigManager) reload() {
	var rows []domain.HubConfig
	if err := m.db.Find(&rows).Error; err != nil {
		// Keep serving the previous snapshot on read failure.
		return
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Type+"."+r.Name] = r.Value
	}
	m.values = values
	m.loaded = time.Now()
}

func (m *ConfigManager) GetString(category, name string) string {
	return m.get(category, name)
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.get(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.get(category, name))
}
