package adminapi

import (
	"testing"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/talkincode/toughkiosk/config"
	"github.com/talkincode/toughkiosk/internal/importer"
	"github.com/talkincode/toughkiosk/internal/presence"
	"github.com/talkincode/toughkiosk/internal/syncer"
	"github.com/talkincode/toughkiosk/internal/webserver"
)

type stubAppCtx struct{}

func (stubAppCtx) DB() *gorm.DB                                       { return nil }
func (stubAppCtx) Config() *config.AppConfig                          { return config.DefaultAppConfig }
func (stubAppCtx) GetSettingsStringValue(category, key string) string { return "" }
func (stubAppCtx) GetSettingsInt64Value(category, key string) int64   { return 0 }
func (stubAppCtx) GetSettingsBoolValue(category, key string) bool     { return false }
func (stubAppCtx) Scheduler() *cron.Cron                              { return nil }
func (stubAppCtx) Engine() *syncer.Engine                             { return nil }
func (stubAppCtx) Presence() *presence.Service                        { return nil }
func (stubAppCtx) MigrateDB(track bool) error                         { return nil }
func (stubAppCtx) InitDb()                                            {}
func (stubAppCtx) DropAll()                                           {}
func (stubAppCtx) Importer() *importer.Importer                       { return nil }
func (stubAppCtx) DeviceId() string                                   { return "" }

func TestDeviceFacingRoutesArePublic(t *testing.T) {
	webserver.Init(stubAppCtx{})
	InitRouter()

	routes := map[string]bool{}
	for _, r := range webserver.Instance().Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	// Devices have no editor token; their endpoints must not sit inside
	// the token-guarded /api group.
	if !routes["POST /setup/register"] {
		t.Error("device registration route missing or token-guarded")
	}
	if routes["POST /api/setup/register"] {
		t.Error("device registration registered under the token-guarded group")
	}
	if !routes["POST /auth/login"] {
		t.Error("login route missing")
	}

	// Editor routes stay guarded.
	for _, want := range []string{
		"GET /api/document",
		"POST /api/document",
		"GET /api/fleet",
		"POST /api/import/content",
	} {
		if !routes[want] {
			t.Errorf("editor route %s missing from the guarded group", want)
		}
	}
}
