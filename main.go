package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrolandas/burburiuok/internal/bootstrap"
	"github.com/mrolandas/burburiuok/internal/config"
	"github.com/mrolandas/burburiuok/internal/store"
	"github.com/mrolandas/burburiuok/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	runMigration := flag.Bool("migrate", false, "Apply the database schema and exit")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	cfg := config.Load()

	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if *runMigration {
		if err := db.Migrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration complete")
		return
	}

	if err := bootstrap.Run(cfg, db); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment (or a .env file).\n")
	fmt.Fprintf(os.Stderr, "A fresh database serves 503 AUTH_MIGRATION_REQUIRED until -migrate is run.\n")
}
