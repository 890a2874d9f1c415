package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm/clause"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/webserver"
)

type fleetView struct {
	domain.KioskRegistry
	Online bool `json:"online"`
}

type assignmentPayload struct {
	Name     string `json:"name"`
	Zone     string `json:"zone"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type setupPayload struct {
	DeviceId   string `json:"device_id"`
	Name       string `json:"name"`
	DeviceType string `json:"device_type"`
}

func registerFleetRoutes() {
	webserver.ApiGET("/fleet", listFleet)
	webserver.ApiPUT("/fleet/:id", updateAssignment)
	webserver.ApiDELETE("/fleet/:id", removeKiosk)
	webserver.ApiPOST("/fleet/:id/restart", requestRestart)
	webserver.ApiPOST("/fleet/:id/snapshot", requestSnapshot)
	webserver.ApiGET("/fleet/export/csv", exportFleetCSV)
	// Devices registering through the hub carry no editor token yet.
	webserver.PubPOST("/setup/register", setupRegister)
}

// onlineThreshold reads the central liveness threshold, falling back to
// the static agent config.
func onlineThreshold(c echo.Context) time.Duration {
	a := getApp(c)
	sec := a.GetSettingsInt64Value("presence", "online_threshold_sec")
	if sec <= 0 {
		sec = int64(a.Config().Agent.OnlineThresholdSec)
	}
	if sec <= 0 {
		sec = 120
	}
	return time.Duration(sec) * time.Second
}

// listFleet returns all registry rows with the derived online flag. The
// stored status column is advisory only; liveness always comes from the
// last-seen comparison.
func listFleet(c echo.Context) error {
	rows, err := getApp(c).Presence().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query fleet", err.Error())
	}
	threshold := onlineThreshold(c)
	now := time.Now()
	views := make([]fleetView, 0, len(rows))
	for i := range rows {
		views = append(views, fleetView{
			KioskRegistry: rows[i],
			Online:        rows[i].Online(now, threshold),
		})
	}
	return ok(c, views)
}

func updateAssignment(c echo.Context) error {
	deviceId := c.Param("id")
	var payload assignmentPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse parameters", nil)
	}
	err := getApp(c).Presence().UpdateAssignment(c.Request().Context(), deviceId,
		strings.TrimSpace(payload.Name), payload.Zone, payload.Location, payload.Notes)
	if err != nil {
		return fail(c, http.StatusNotFound, "KIOSK_NOT_FOUND", "Device not found", nil)
	}
	audit(c, "fleet.assign", deviceId)
	return ok(c, map[string]interface{}{"device_id": deviceId})
}

// removeKiosk is the only deletion path for presence rows; nothing ever
// removes them automatically.
func removeKiosk(c echo.Context) error {
	deviceId := c.Param("id")
	if err := getApp(c).Presence().Remove(c.Request().Context(), deviceId); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove device", err.Error())
	}
	audit(c, "fleet.remove", deviceId)
	return ok(c, map[string]interface{}{"device_id": deviceId})
}

func requestRestart(c echo.Context) error {
	deviceId := c.Param("id")
	if err := getApp(c).Presence().RequestRestart(c.Request().Context(), deviceId); err != nil {
		return fail(c, http.StatusNotFound, "KIOSK_NOT_FOUND", "Device not found", nil)
	}
	audit(c, "fleet.restart", deviceId)
	return ok(c, map[string]interface{}{"device_id": deviceId})
}

func requestSnapshot(c echo.Context) error {
	deviceId := c.Param("id")
	if err := getApp(c).Presence().RequestSnapshot(c.Request().Context(), deviceId); err != nil {
		return fail(c, http.StatusNotFound, "KIOSK_NOT_FOUND", "Device not found", nil)
	}
	audit(c, "fleet.snapshot", deviceId)
	return ok(c, map[string]interface{}{"device_id": deviceId})
}

type fleetCSVRow struct {
	DeviceId string `csv:"device_id"`
	Name     string `csv:"name"`
	Type     string `csv:"type"`
	Online   bool   `csv:"online"`
	LastSeen string `csv:"last_seen"`
	Signal   int    `csv:"signal"`
	Network  string `csv:"network"`
	Zone     string `csv:"zone"`
	Location string `csv:"location"`
	Version  string `csv:"version"`
}

func exportFleetCSV(c echo.Context) error {
	rows, err := getApp(c).Presence().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query fleet", err.Error())
	}
	threshold := onlineThreshold(c)
	now := time.Now()
	out := make([]fleetCSVRow, 0, len(rows))
	for i := range rows {
		k := &rows[i]
		out = append(out, fleetCSVRow{
			DeviceId: k.DeviceId,
			Name:     k.Name,
			Type:     k.DeviceType,
			Online:   k.Online(now, threshold),
			LastSeen: k.LastSeen.UTC().Format(time.RFC3339),
			Signal:   k.Signal,
			Network:  k.Network,
			Zone:     k.Zone,
			Location: k.Location,
			Version:  k.Version,
		})
	}
	data, err := gocsv.MarshalString(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build CSV", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=fleet.csv`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}

// setupRegister lets mobile/kiosk devices without direct database access
// register through the hub.
func setupRegister(c echo.Context) error {
	var payload setupPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse parameters", nil)
	}
	payload.DeviceId = strings.TrimSpace(payload.DeviceId)
	if payload.DeviceId == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "device_id is required", nil)
	}
	if payload.DeviceType == "" {
		payload.DeviceType = domain.DeviceTypeKiosk
	}

	a := getApp(c)
	reg := &domain.KioskRegistry{
		DeviceId:   payload.DeviceId,
		Name:       payload.Name,
		DeviceType: payload.DeviceType,
		Status:     domain.DeviceStatusOnline,
		LastSeen:   time.Now(),
	}
	err := a.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "device_type", "status", "last_seen", "updated_at"}),
	}).Create(reg).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Registration failed", err.Error())
	}
	audit(c, "fleet.register", payload.DeviceId)
	return ok(c, reg)
}
