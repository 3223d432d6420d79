package seeding

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/tally/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the score seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Tally Score Seeding Tool
========================

A concurrent tool for loading a running tally server with realistic
score submissions, including deliberate duplicate replays.

Usage:
  go run cmd/seed-scores/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:3000")
  -scores int
        Number of unique score submissions to generate (default 1000)
  -judges int
        Size of the fake judge pool (default 20)
  -duplicates float
        Fraction of submissions replayed with the same id (default 0.1)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated submissions (default: generated_scores_TIMESTAMP.json)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-scores/main.go

  # Seed with custom parameters
  go run cmd/seed-scores/main.go -scores 5000 -workers 16 -url http://localhost:8080

  # Seed with a heavy duplicate replay rate
  go run cmd/seed-scores/main.go -scores 2000 -duplicates 0.5
`)
}
