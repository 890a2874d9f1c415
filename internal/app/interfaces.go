package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/talkincode/toughkiosk/config"
	"github.com/talkincode/toughkiosk/internal/importer"
	"github.com/talkincode/toughkiosk/internal/presence"
	"github.com/talkincode/toughkiosk/internal/syncer"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// EngineProvider provides the document sync engine
type EngineProvider interface {
	Engine() *syncer.Engine
}

// PresenceProvider provides the presence subsystem
type PresenceProvider interface {
	Presence() *presence.Service
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider
	EngineProvider
	PresenceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// Importer returns the bulk content importer
	Importer() *importer.Importer
	// DeviceId returns this process's persisted device identity
	DeviceId() string
}
