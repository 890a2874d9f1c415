package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/syncer"
	"github.com/talkincode/toughkiosk/pkg/common"
	"github.com/talkincode/toughkiosk/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error

	if a.appConfig.Agent.Enabled {
		pollSpec := fmt.Sprintf("@every %ds", intervalOr(a.appConfig.Agent.PollIntervalSec, 60))
		_, err = a.sched.AddFunc(pollSpec, func() {
			go a.SchedPollTask()
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}

		beatSpec := fmt.Sprintf("@every %ds", intervalOr(a.appConfig.Agent.HeartbeatSec, 30))
		_, err = a.sched.AddFunc(beatSpec, func() {
			a.presenceSvc.Heartbeat("")
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	_, err = a.sched.AddFunc("@daily", func() {
		idays := a.configMgr.GetInt64("audit", "retention_days")
		if idays == 0 {
			idays = 365
		}
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*time.Duration(idays))).Delete(domain.HubAuditLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// Hub-side nightly pass: a fetch runs the sweep and persists the
	// cleanup, so expired catalogues disappear even when no device polls.
	if a.appConfig.Web.Enabled {
		_, err = a.sched.AddFunc("@midnight", func() {
			go a.SchedSweepTask()
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// StartBackgroundJobs launches the realtime subscription and, on agents,
// performs the startup registration and first beat.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	ctx, a.cancelJobs = context.WithCancel(ctx)

	if a.appConfig.Agent.Enabled {
		name := common.IfEmptyStr(a.appConfig.Agent.DeviceName, a.deviceId)
		if err := a.presenceSvc.Register(ctx, name, a.appConfig.Agent.DeviceType); err != nil {
			zap.S().Warnf("device registration incomplete: %s", err.Error())
		}
		a.presenceSvc.Heartbeat("")
		a.listener.Start(ctx)

		// Serve the startup document immediately.
		go a.SchedPollTask()
	}
}

// SchedPollTask is the fixed-interval document poll: fetch, publish to
// renderers, then act on pending commands addressed to this device.
func (a *Application) SchedPollTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	started := time.Now()
	doc := a.engine.Fetch(ctx)
	a.presenceSvc.RecordLatency(time.Since(started))
	a.bus.Publish(syncer.TopicDocumentChanged, doc)

	a.checkCommands(ctx)
}

// checkCommands reads this device's own registry row and fulfils pending
// command flags. Each flag is cleared only here, by the owning device.
func (a *Application) checkCommands(ctx context.Context) {
	row, err := a.gstore.GetKiosk(ctx, a.deviceId)
	if err != nil {
		return
	}

	if row.RequestSnapshot && a.snapshot != nil {
		a.uploadSnapshot(ctx)
	}

	if row.RestartRequested {
		zap.S().Warn("restart requested by editor, acknowledging and exiting")
		if err := a.presenceSvc.AcknowledgeRestart(ctx); err != nil {
			zap.S().Warnf("restart not acknowledged: %s", err.Error())
			return
		}
		// The process supervisor brings the agent back up.
		a.Release()
		osExit(0)
	}
}

func (a *Application) uploadSnapshot(ctx context.Context) {
	img, err := a.snapshot(ctx)
	if err != nil {
		zap.S().Warnf("snapshot capture failed: %s", err.Error())
		return
	}
	name := fmt.Sprintf("snapshot-%s-%d.png", a.deviceId, time.Now().Unix())
	url, err := a.bulkImport.UploadAsset(ctx, name, img)
	if err != nil {
		zap.S().Warnf("snapshot upload failed: %s", err.Error())
		return
	}
	// The beat attaches the result and clears the request flag.
	a.presenceSvc.Heartbeat(url)
}

// SchedSweepTask runs the hub-side expiry pass.
func (a *Application) SchedSweepTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	doc := a.engine.Fetch(ctx)
	metrics.SetGauge("hub_catalogues_active", int64(len(doc.Catalogues)))
	metrics.SetGauge("hub_catalogues_archived", int64(len(doc.Archive.Catalogues)))
}

func intervalOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// indirection for tests
var osExit = os.Exit
