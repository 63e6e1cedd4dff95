package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yirenWang/myVelib/internal/config"
	"github.com/yirenWang/myVelib/internal/logger"
	"github.com/yirenWang/myVelib/internal/network"
	"github.com/yirenWang/myVelib/internal/server"
)

func main() {
	logger.Init()
	logger.Info("Starting myVelib network server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	net, err := network.NewRandom(cfg.NetworkName, cfg.SideKm, network.SeedSpec{
		Stations:        cfg.StationCount,
		SlotsPerStation: cfg.SlotsPerStation,
		BikeFill:        cfg.BikeFill,
		PlusShare:       cfg.PlusStationShare,
		ElectricShare:   cfg.ElectricBikeShare,
	}, cfg.Seed, time.Now())
	if err != nil {
		logger.Fatalf("Failed to seed network: %v", err)
	}
	net.SetStrictReturns(cfg.StrictReturns)

	srv := server.New(net, cfg)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		logger.Infof("Listening on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
