package main // Entry point of the station companion agent

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/evcharge-agent/internal/auth"
	"github.com/iliyamo/evcharge-agent/internal/cache"
	"github.com/iliyamo/evcharge-agent/internal/config"
	"github.com/iliyamo/evcharge-agent/internal/gateway"
	"github.com/iliyamo/evcharge-agent/internal/handler"
	"github.com/iliyamo/evcharge-agent/internal/netcheck"
	"github.com/iliyamo/evcharge-agent/internal/router"
	"github.com/iliyamo/evcharge-agent/internal/session"
	"github.com/iliyamo/evcharge-agent/internal/store"
	"github.com/iliyamo/evcharge-agent/internal/syncer"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open credential store: %v", err)
	}
	defer func() { _ = db.Close() }()
	credentials := store.NewCredentialStore(db)

	probe, err := netcheck.FromBaseURL(cfg.GatewayBaseURL)
	if err != nil {
		log.Fatalf("invalid GATEWAY_BASE_URL: %v", err)
	}

	sessions := session.NewHolder()
	gw := gateway.NewClient(&http.Client{Timeout: cfg.GatewayTimeout}, cfg.GatewayBaseURL, sessions)

	bookings := cache.NewBookingCache(gw)
	flow := auth.NewFlow(gw, credentials, probe, cfg.BcryptCost)

	// Background reconciliation of registrations created while offline.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.New(credentials, probe, cfg.SyncInterval).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, flow, sessions, bookings, gw),
		Bookings: handler.NewBookingHandler(bookings, gw),
		Stations: handler.NewStationHandler(gw),
		Operator: handler.NewOperatorHandler(gw),
	}, cfg.SessionSecret, config.NewRedisClient())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, gateway=%s)", addr, cfg.Env, cfg.GatewayBaseURL)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
