package app

import (
	"testing"

	"github.com/talkincode/toughkiosk/config"
)

func unreachableStoreConfig() *config.AppConfig {
	cfg := *config.DefaultAppConfig
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1 // nothing listens here
	return &cfg
}

func TestGetDatabaseAgentSurvivesUnreachableStore(t *testing.T) {
	cfg := unreachableStoreConfig()
	cfg.Web.Enabled = false
	cfg.Agent.Enabled = true

	db := getDatabase(cfg)
	if db == nil {
		t.Fatal("agent must get a database handle even with the store down")
	}

	// Queries fail with an error, they never block or kill startup.
	var n int
	if err := db.Raw("SELECT 1").Scan(&n).Error; err == nil {
		t.Error("query against an unreachable store should fail")
	}
}

func TestGetDatabaseHubFailsFast(t *testing.T) {
	cfg := unreachableStoreConfig()
	cfg.Web.Enabled = true
	cfg.Agent.Enabled = false

	defer func() {
		if recover() == nil {
			t.Error("hub startup must fail when its store is unreachable")
		}
	}()
	getDatabase(cfg)
}
