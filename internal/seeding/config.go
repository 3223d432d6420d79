package seeding

import (
	"encoding/json"
	"time"
)

// Config holds configuration for the score seeding run
type Config struct {
	BaseURL       string        // Base URL of the service
	NumScores     int           // Number of score submissions to generate
	NumJudges     int           // Size of the fake judge pool
	DuplicateRate float64       // Fraction of submissions replayed with the same id
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	OutputFile    string        // Output file for generated submissions
	LogFile       string        // Log file for run output
	Verbose       bool          // Enable verbose logging
}

// Submission represents a score submission sent to the service
type Submission struct {
	UUID         string          `json:"uuid"`
	GameID       string          `json:"game_id"`
	EntityID     int64           `json:"entity_id"`
	ScorePayload json.RawMessage `json:"score_payload"`
	Timestamp    int64           `json:"timestamp"`
	JudgeName    string          `json:"judge_name,omitempty"`
	JudgeEmail   string          `json:"judge_email,omitempty"`
	JudgeUnit    string          `json:"judge_unit,omitempty"`
}

// entityInfo is the subset of the entity listing needed for generation
type entityInfo struct {
	ID int64 `json:"id"`
}

// statusResponse represents the response from score submission
type statusResponse struct {
	Status string `json:"status"`
}

// Stats holds seeding run statistics
type Stats struct {
	ScoresGenerated int
	ScoresSubmitted int
	ScoresCreated   int
	ScoresDuplicate int
	ScoresFailed    int
	EntitiesFound   int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
