// Package adminapi implements the hub's editor-facing HTTP handlers. The
// document endpoints are a thin shell over the sync engine; everything
// here treats the synchronized document as the unit of exchange.
package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughkiosk/internal/app"
	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/webserver"
	"github.com/talkincode/toughkiosk/pkg/common"
)

// InitRouter registers all admin API routes.
func InitRouter() {
	registerAuthRoutes()
	registerDocumentRoutes()
	registerFleetRoutes()
	registerImportRoutes()
	registerReportRoutes()
}

func getApp(c echo.Context) app.AppContext {
	return webserver.Instance().App()
}

type apiResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: 0, Data: data})
}

func fail(c echo.Context, status int, code string, message string, detail interface{}) error {
	return c.JSON(status, apiResponse{Code: 1, Message: code + ": " + message, Detail: detail})
}

// audit records an editor operation, best effort.
func audit(c echo.Context, action, desc string) {
	a := getApp(c)
	a.DB().Create(&domain.HubAuditLog{
		ID:        common.UUIDint64(),
		OprName:   operatorName(c),
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}
