package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/talkincode/toughkiosk/config"
	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/importer"
	"github.com/talkincode/toughkiosk/internal/presence"
	"github.com/talkincode/toughkiosk/internal/store"
	"github.com/talkincode/toughkiosk/internal/syncer"
	"github.com/talkincode/toughkiosk/pkg/common"
	"github.com/talkincode/toughkiosk/pkg/metrics"
)

// Version is stamped at build time.
var Version = "dev"

// SnapshotProvider captures a screen snapshot for the snapshot command.
// Rendering is outside this repository; display frontends register one.
type SnapshotProvider func(ctx context.Context) ([]byte, error)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	pool      *ants.Pool
	bus       EventBus.Bus

	gstore      *store.GormStore
	cache       *store.Cache
	engine      *syncer.Engine
	presenceSvc *presence.Service
	bulkImport  *importer.Importer
	listener    *syncer.Listener
	configMgr   *ConfigManager

	deviceId string
	snapshot SnapshotProvider

	cancelJobs context.CancelFunc
}

// Ensure Application implements all interfaces
var (
	_ DBProvider       = (*Application)(nil)
	_ ConfigProvider   = (*Application)(nil)
	_ SettingsProvider = (*Application)(nil)
	_ EngineProvider   = (*Application)(nil)
	_ PresenceProvider = (*Application)(nil)
	_ AppContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig      { return a.appConfig }
func (a *Application) DB() *gorm.DB                   { return a.gormDB }
func (a *Application) Engine() *syncer.Engine         { return a.engine }
func (a *Application) Presence() *presence.Service    { return a.presenceSvc }
func (a *Application) Importer() *importer.Importer   { return a.bulkImport }
func (a *Application) Scheduler() *cron.Cron          { return a.sched }
func (a *Application) ConfigMgr() *ConfigManager      { return a.configMgr }
func (a *Application) DeviceId() string               { return a.deviceId }

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

// SetSnapshotProvider registers the frontend snapshot hook.
func (a *Application) SetSnapshotProvider(p SnapshotProvider) {
	a.snapshot = p
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkDocument()
		a.checkSettings()
	}()

	a.configMgr = NewConfigManager(a.gormDB, DefaultSettingsCacheTTL)

	a.pool, err = ants.NewPool(16, ants.WithNonblocking(true))
	if err != nil {
		zap.S().Errorf("background pool init failed: %v", err)
	}
	a.bus = EventBus.New()

	cache, err := store.OpenCache(path.Join(cfg.GetDataDir(), "cache.db"))
	if err != nil {
		zap.S().Errorf("local cache unavailable, running without fallback: %v", err)
	} else {
		a.cache = cache
	}

	a.deviceId = a.resolveDeviceId(cfg)

	a.gstore = store.NewGormStore(a.gormDB)
	a.engine = syncer.NewEngine(a.gstore, a.gstore, a.cache, a.pool, a.bus)
	a.presenceSvc = presence.NewService(a.gstore, a.pool, a.deviceId, Version)
	a.bulkImport = importer.New(
		store.NewSftpAssetStore(cfg.Assets),
		store.NewHTTPRasterizer(cfg.Assets.RasterizerURL),
		cfg.Assets.MaxInlineBytes,
	)
	a.listener = syncer.NewListener(pgDSN(cfg.Database), a.engine)

	a.initJob()
}

// resolveDeviceId prefers an explicit config override (restore scenario),
// then the locally persisted identity, then generates and persists one.
func (a *Application) resolveDeviceId(cfg *config.AppConfig) string {
	if cfg.Agent.DeviceId != "" {
		if a.cache != nil {
			_ = a.cache.PutDeviceId(cfg.Agent.DeviceId)
		}
		return cfg.Agent.DeviceId
	}
	if a.cache != nil {
		if id := a.cache.DeviceId(); id != "" {
			return id
		}
	}
	id := "LOC-" + common.UUID()
	if a.cache != nil {
		if err := a.cache.PutDeviceId(id); err != nil {
			zap.S().Warnf("device id not persisted: %s", err.Error())
		}
	}
	return id
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if err2, ok := err1.(error); ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configMgr.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configMgr.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configMgr.GetBool(category, key)
}

// Release releases application resources
func (a *Application) Release() {
	if a.cancelJobs != nil {
		a.cancelJobs()
	}
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}

func pgDSN(c config.DBConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Passwd, c.Name)
}
