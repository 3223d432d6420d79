package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/tally/internal/seeding"
)

// Default configuration constants.
const (
	defaultNumScores     = 1000
	defaultNumJudges     = 20
	defaultDuplicateRate = 0.1
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultRunTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:3000", "Base URL of the service")
		numScores     = flag.Int("scores", defaultNumScores, "Number of unique score submissions to generate")
		numJudges     = flag.Int("judges", defaultNumJudges, "Size of the fake judge pool")
		duplicateRate = flag.Float64("duplicates", defaultDuplicateRate, "Fraction of submissions replayed with the same id")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile    = flag.String("output", "", "Output file for generated submissions (default: generated_scores_TIMESTAMP.json)")
		logFile       = flag.String("log", "", "Log file for run output (default: seed_log_TIMESTAMP.log)")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeding.ShowHelp()
		return
	}

	// Setup logging
	if err := seeding.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create seeding configuration
	config := &seeding.Config{
		BaseURL:       *baseURL,
		NumScores:     *numScores,
		NumJudges:     *numJudges,
		DuplicateRate: *duplicateRate,
		Workers:       *workers,
		Timeout:       *timeout,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	// Run the seeding pass
	if err := seeding.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
