package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/talkincode/toughkiosk/config"
	"github.com/talkincode/toughkiosk/internal/adminapi"
	"github.com/talkincode/toughkiosk/internal/app"
	"github.com/talkincode/toughkiosk/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "/etc/toughkiosk.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and initialize database")
	debug    = flag.Bool("x", false, "debug mode")
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Println("toughkiosk", app.Version)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	if *debug {
		cfg.System.Debug = true
		cfg.Database.Debug = true
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application.StartBackgroundJobs(ctx)

	if cfg.Web.Enabled {
		webserver.Init(application)
		adminapi.InitRouter()
		go func() {
			if err := webserver.Instance().Listen(); err != nil {
				zap.S().Fatalf("admin api failed: %v", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	zap.S().Info("shutting down")
}
