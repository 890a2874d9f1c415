// Package webserver hosts the hub's editor/admin HTTP API. Route
// registration goes through the Api* helpers so handler packages stay
// free of echo server setup.
package webserver

import (
	"fmt"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"github.com/talkincode/toughkiosk/internal/app"
)

type WebServer struct {
	root *echo.Echo
	api  *echo.Group
	app  app.AppContext
}

var server *WebServer

func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.ERROR)
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.Secret),
	}))

	server = &WebServer{root: e, api: api, app: appCtx}
	return server
}

func Instance() *WebServer {
	return server
}

func (s *WebServer) App() app.AppContext {
	return s.app
}

// Routes lists every registered route, guarded and public.
func (s *WebServer) Routes() []*echo.Route {
	return s.root.Routes()
}

// Listen blocks serving the admin API.
func (s *WebServer) Listen() error {
	cfg := s.app.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("admin api listening on %s", addr)
	err := s.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// PubPOST registers an unauthenticated route (login, device setup).
func PubPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h)
}

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}
