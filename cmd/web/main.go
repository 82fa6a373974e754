package main

import (
	"context"
	"flag"
	"log"

	"conftrail/config"
	"conftrail/database"
	"conftrail/gitsync"
	"conftrail/web"
)

func main() {
	addr := flag.String("addr", "", "Listen address for web server (overrides WEB_ADDR)")
	flag.Parse()

	cfg := config.LoadEnvConfig("settings.env")
	if *addr != "" {
		cfg.WebAddr = *addr
	}

	ctx := context.Background()
	db := database.NewDatabase(cfg.ConftrailDsn, cfg.ManagementDsn)
	if err := db.Connect(ctx); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	client := database.NewDBClient(db.Pool())

	var syncer web.Syncer
	if cfg.GitConfigurations != "" {
		syncer = gitsync.NewService(cfg.GitConfigurations, cfg.GitLocalPath, client)
	}

	server := web.NewServer(client, syncer, cfg.WebAddr)
	log.Printf("Starting web interface at http://localhost%s", cfg.WebAddr)
	if err := server.Start(); err != nil {
		log.Fatalf("Web server error: %v", err)
	}
}
