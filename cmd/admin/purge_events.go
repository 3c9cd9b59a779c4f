package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/config"
	redisclient "github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/redis"
	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/infra/storage/postgres"
)

// Wipes the audit table and journal for one terminal. Meant for bench
// terminals that accumulated noise during testing.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		n, err := postgres.NewEventRepo(db).Purge(ctx, cfg.TerminalID)
		_ = db.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to purge events: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("purged %d audit events for %s\n", n, cfg.TerminalID)
	}

	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to redis: %v\n", err)
			os.Exit(1)
		}
		journal := redisclient.NewJournal(client, cfg.TerminalID, 0)
		if err := journal.Purge(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to purge journal: %v\n", err)
			os.Exit(1)
		}
		_ = client.Close()
		fmt.Printf("purged journal for %s\n", cfg.TerminalID)
	}
}
