package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commish/config"
	"commish/internal/database"
	"commish/internal/repository"
	"commish/internal/router"
	"commish/internal/service"
	"commish/internal/ws"
	"commish/pkg/vault"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)
	database.SeedSettings(db, cfg.Ledger.PlatformSplitPercent)

	hub := ws.NewHub()

	var v *vault.Vault
	if cfg.Vault.Path != "" {
		if err := vault.EnsureDir(cfg.Vault.Path); err != nil {
			log.Fatalf("vault dir: %v", err)
		}
		snapshotSvc := service.NewSnapshotService(
			repository.NewSnapshotRepository(db),
			repository.NewSettingRepository(db),
		)
		v = vault.New(cfg.Vault.Path, cfg.Vault.Debounce, func() ([]byte, error) {
			var buf bytes.Buffer
			if err := snapshotSvc.WriteJSON(&buf); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		})
		log.Printf("vault enabled at %s", cfg.Vault.Path)
	}

	engine, ledgerSvc, syncSvc := router.Setup(cfg, db, v, hub)

	sweepStop := make(chan struct{})
	ledgerSvc.StartSweep(cfg.Ledger.OverdueSweepInterval, sweepStop)
	syncSvc.WatchVault()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	close(sweepStop)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	if v != nil {
		if err := v.Close(); err != nil {
			log.Printf("vault close: %v", err)
		}
	}
	fmt.Println("server stopped")
}
