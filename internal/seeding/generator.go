package seeding

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/okian/tally/pkg/logger"
)

// Game roster for generated submissions.
const numGames = 12

// Payload shape cases.
const (
	casePointsOnly = 0
	caseTimed      = 1
	caseJudged     = 2
	caseFull       = 3
	payloadShapes  = 4
)

// Scoring ranges.
const (
	maxPoints      = 100
	maxTimeSeconds = 600.0
	maxBonus       = 25
)

// judge is a pre-generated judge identity reused across submissions
// so that identity reconciliation gets exercised.
type judge struct {
	name  string
	email string
	unit  string
}

// generateJudgePool builds a fixed pool of fake judges.
func generateJudgePool(n int) []judge {
	pool := make([]judge, n)
	for i := range pool {
		pool[i] = judge{
			name:  gofakeit.Name(),
			email: gofakeit.Email(),
			unit:  "Troop " + strconv.Itoa(gofakeit.Number(100, 999)),
		}
	}
	return pool
}

// generateSubmissions creates the requested number of submissions spread
// across the known entities, games, and judge pool. A configurable
// fraction of the output reuses an earlier submission id to exercise
// duplicate handling on the server.
func generateSubmissions(ctx context.Context, config *Config, entities []entityInfo, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating score submissions",
		logger.Int("numScores", config.NumScores),
		logger.Int("entities", len(entities)),
		logger.Int("judges", config.NumJudges))

	if len(entities) == 0 {
		return nil, fmt.Errorf("no entities available to score")
	}

	judges := generateJudgePool(config.NumJudges)

	submissions := make([]Submission, 0, config.NumScores)
	for i := 0; i < config.NumScores; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		default:
		}

		entity := entities[gofakeit.Number(0, len(entities)-1)]
		j := judges[gofakeit.Number(0, len(judges)-1)]
		gameID := "game-" + strconv.Itoa(gofakeit.Number(1, numGames))

		submissions = append(submissions, Submission{
			UUID:         uuid.New().String(),
			GameID:       gameID,
			EntityID:     entity.ID,
			ScorePayload: generatePayload(),
			Timestamp:    time.Now().UnixMilli(),
			JudgeName:    j.name,
			JudgeEmail:   j.email,
			JudgeUnit:    j.unit,
		})
	}

	// Replay a slice of the generated submissions verbatim. The server
	// must report these as already_exists.
	numDuplicates := int(float64(len(submissions)) * config.DuplicateRate)
	for i := 0; i < numDuplicates; i++ {
		original := submissions[gofakeit.Number(0, config.NumScores-1)]
		submissions = append(submissions, original)
	}

	stats.ScoresGenerated = len(submissions)
	logger.Get().Info(ctx, "generated submissions",
		logger.Int("unique", config.NumScores),
		logger.Int("replayed", numDuplicates))

	return submissions, nil
}

// generatePayload creates a score payload with one of several shapes so
// that exports see a sparse union of columns.
func generatePayload() json.RawMessage {
	fields := map[string]any{}

	switch gofakeit.Number(0, payloadShapes-1) {
	case casePointsOnly:
		fields["points"] = gofakeit.Number(0, maxPoints)
	case caseTimed:
		fields["points"] = gofakeit.Number(0, maxPoints)
		fields["time_seconds"] = gofakeit.Float64Range(0, maxTimeSeconds)
	case caseJudged:
		fields["points"] = gofakeit.Number(0, maxPoints)
		fields["sportsmanship"] = gofakeit.Number(1, 5)
		fields["notes"] = gofakeit.Sentence(6)
	case caseFull:
		fields["points"] = gofakeit.Number(0, maxPoints)
		fields["time_seconds"] = gofakeit.Float64Range(0, maxTimeSeconds)
		fields["bonus"] = gofakeit.Number(0, maxBonus)
		fields["completed"] = gofakeit.Bool()
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
