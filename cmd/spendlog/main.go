package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"spendlog/internal/config"
	applog "spendlog/internal/log"
	"spendlog/internal/storage"
)

func main() {
	// .env is optional; environment variables win when both are set
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Level:     cfg.SlogLevel(),
		Component: "spendlog",
	})
	applog.SetDefault(logger)

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open expense store", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}

	fmt.Println("Expense Tracker Application Started")
	logger.Info("Schema ensured", "path", cfg.DBPath)

	if err := store.Close(); err != nil {
		logger.Error("Failed to close expense store", "error", err)
		os.Exit(1)
	}
}
