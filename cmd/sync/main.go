package main

import (
	"context"
	"flag"
	"log"
	"time"

	"conftrail/config"
	"conftrail/database"
	"conftrail/devicepoll"
	"conftrail/gitsync"
)

func main() {
	reset := flag.Bool("reset", false, "Drop and recreate the conftrail database before syncing")
	poll := flag.Bool("poll", false, "Also capture configurations from live devices over SSH")
	flag.Parse()

	cfg := config.LoadEnvConfig("settings.env")
	ctx := context.Background()

	if *reset {
		if err := database.ResetDatabase(ctx, cfg.ManagementDsn, cfg.ConftrailDsn); err != nil {
			log.Fatalf("failed to reset database: %v", err)
		}
	}

	db := database.NewDatabase(cfg.ConftrailDsn, cfg.ManagementDsn)
	if err := db.Connect(ctx); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	client := database.NewDBClient(db.Pool())

	if cfg.GitConfigurations != "" {
		syncer := gitsync.NewService(cfg.GitConfigurations, cfg.GitLocalPath, client)
		if err := syncer.Sync(ctx); err != nil {
			// One failed cycle is a warning, not a crash; the next run retries.
			log.Printf("git synchronization failed: %v", err)
		}
	}

	if *poll {
		fetcher := devicepoll.NewFetcher(cfg.SSHUsername, cfg.SSHPassword, cfg.SSHPort, cfg.SSHCommand, 30*time.Second)
		poller := devicepoll.NewService(client, fetcher)
		if err := poller.PollDevices(ctx); err != nil {
			log.Printf("device poll failed: %v", err)
		}
	}
}
