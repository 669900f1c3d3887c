package main

import (
	"context"
	"flag"
	"os"

	"whatsapp-bulk-sender/internal/config"
	"whatsapp-bulk-sender/internal/contact"
	"whatsapp-bulk-sender/internal/database"
	"whatsapp-bulk-sender/internal/logging"
)

// import_clients seeds the clients table from a CSV file so the remote
// contact source has rows to serve in development.
func main() {
	path := flag.String("file", "", "CSV file to import (name,phone[,status])")
	flag.Parse()

	cfg := config.LoadConfig()
	log := logging.Component(logging.New(cfg.LogLevel, cfg.LogFormat), "import_clients")

	if *path == "" {
		log.Fatal().Msg("-file is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("failed to open csv")
	}
	defer f.Close()

	// Keep every row; eligibility is stored in the status column.
	contacts, err := contact.NewCSVIngestor(log, false).ParseFile(*path, f)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse csv")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	n, err := database.NewClientStore(db).Seed(context.Background(), contacts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to upsert clients")
	}
	log.Info().Int("rows", len(contacts)).Int("clients", n).Str("driver", cfg.DBDriver).Msg("import completed")
}
