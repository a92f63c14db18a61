package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"ocrfix/cmd"
	"ocrfix/internal/config"
	"ocrfix/internal/logger"
)

func main() {
	// Load environment variables; a missing .env file is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration; a broken config file still leaves defaults and env.
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration file: %v", err)
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Info().
		Str("config_file", cfg.SourceFile).
		Msg("Starting ocrfix")

	cmd.Execute(cfg)

	log.Info().Msg("ocrfix shutdown")
	os.Exit(0)
}
