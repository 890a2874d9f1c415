package app

import (
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/talkincode/toughkiosk/config"
	"github.com/talkincode/toughkiosk/internal/domain"
)

func getDatabase(cfg *config.AppConfig) *gorm.DB {
	dbc := cfg.Database
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
		dbc.Host, dbc.Port, dbc.User, dbc.Passwd, dbc.Name, time.Local.String())

	loglevel := gormlogger.Silent
	if dbc.Debug {
		loglevel = gormlogger.Info
	}

	// A pure display agent must come up with the hub database unreachable:
	// connections open lazily and every query error degrades through the
	// fetch fallback to the local cache. The hub still fails fast, it has
	// nothing to serve without its store.
	agentOnly := cfg.Agent.Enabled && !cfg.Web.Enabled

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(loglevel),
		DisableAutomaticPing: agentOnly,
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(dbc.MaxConn)
	sqlDB.SetMaxIdleConns(dbc.IdleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}

// checkDocument seeds the canonical row with the default document when the
// table is empty, so a fresh hub serves something renderable immediately.
func (a *Application) checkDocument() {
	var row domain.DocumentRow
	err := a.gormDB.First(&row, domain.DocumentRowID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		data, merr := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(domain.DefaultDocument())
		if merr != nil {
			zap.L().Error("failed to encode default document", zap.Error(merr))
			return
		}
		if cerr := a.gormDB.Create(&domain.DocumentRow{
			ID:        domain.DocumentRowID,
			Data:      data,
			UpdatedAt: time.Now(),
		}).Error; cerr != nil {
			zap.L().Error("failed to seed canonical document", zap.Error(cerr))
			return
		}
		zap.L().Info("initialized canonical document row")
	case err != nil:
		zap.L().Error("failed to query canonical document", zap.Error(err))
	}
}

type settingSchema struct {
	category string
	name     string
	value    string
	remark   string
}

// checkSettings initializes missing operational settings. Values here
// override the static config file so the fleet can be retuned centrally.
func (a *Application) checkSettings() {
	schemas := []settingSchema{
		{"sync", "poll_interval_sec", "60", "Device document poll interval"},
		{"presence", "heartbeat_sec", "30", "Device heartbeat interval"},
		{"presence", "online_threshold_sec", "120", "Derived-online liveness threshold"},
		{"importer", "max_inline_bytes", "2097152", "Inline-embed ceiling for failed asset uploads"},
		{"audit", "retention_days", "365", "Audit log retention"},
	}

	for sortid, schema := range schemas {
		var count int64
		a.gormDB.Model(&domain.HubConfig{}).
			Where("type = ? and name = ?", schema.category, schema.name).
			Count(&count)
		if count == 0 {
			a.gormDB.Create(&domain.HubConfig{
				Sort:   sortid,
				Type:   schema.category,
				Name:   schema.name,
				Value:  schema.value,
				Remark: schema.remark,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.category+"."+schema.name),
				zap.String("default", schema.value))
		}
	}
}
