package main

import (
	"flag"
	"log"
	"time"

	"dicommpr/internal/server"
	"dicommpr/pkg/config"
	"dicommpr/pkg/session"
)

func main() {
	configPath := flag.String("config", "dicommpr.yaml", "Path to YAML configuration file")
	listen := flag.String("listen", "", "Listen address override, e.g. :5000")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	store := session.NewStore(time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute)
	if cfg.Server.SessionTTLMinutes > 0 {
		store.StartSweeper(time.Minute)
		defer store.Stop()
	}

	e := server.BuildServer(cfg, store)
	if err := e.Start(cfg.Server.Listen); err != nil {
		e.Logger.Fatal(err)
	}
}
