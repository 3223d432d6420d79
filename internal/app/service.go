// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/flatten"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/roster"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Service wires the score ledger store, the entity roster and the export
// flattener behind the operations the HTTP API needs.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// compactMu serializes compaction passes: compaction is exclusive with
	// respect to itself but runs concurrently with ingestion.
	compactMu sync.Mutex

	// Configuration
	dbPath        string
	rosterDir     string
	seedDemoData  bool
	maxExportRows int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite database location.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithRosterDir enables roster CSV import from dir at startup.
func WithRosterDir(dir string) Option {
	return func(s *Service) {
		s.rosterDir = dir
	}
}

// WithSeedDemoData seeds a demo patrol/troop pair when the entity
// directory is empty.
func WithSeedDemoData(seed bool) Option {
	return func(s *Service) {
		s.seedDemoData = seed
	}
}

// WithMaxExportRows caps flattened exports at n rows, newest kept.
// Zero or negative means unlimited.
func WithMaxExportRows(n int) Option {
	return func(s *Service) {
		s.maxExportRows = n
	}
}

// WithStore injects a pre-opened store, mostly for tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath: "data/camporee.db",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the ledger store and loads reference data.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting score ledger service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open ledger store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite store", logger.String("dbPath", s.dbPath))
	}

	if s.rosterDir != "" {
		imported, err := roster.Import(ctx, s.rosterDir, s.store)
		if err != nil {
			return fmt.Errorf("import roster: %w", err)
		}
		s.logger.Info(ctx, "roster imported", logger.Int("entities", imported))
	}

	count, err := s.store.CountEntities(ctx)
	if err != nil {
		return fmt.Errorf("count entities: %w", err)
	}
	if count == 0 && s.seedDemoData {
		if err := s.seedDemoEntities(ctx); err != nil {
			return fmt.Errorf("seed demo entities: %w", err)
		}
		count, _ = s.store.CountEntities(ctx)
	}
	metrics.UpdateEntityCount(count)

	s.started = true
	s.logger.Info(ctx, "score ledger service started", logger.Int64("entities", count))
	return nil
}

// seedDemoEntities mirrors the fresh-install seed: one patrol, one troop.
func (s *Service) seedDemoEntities(ctx context.Context) error {
	demo := []model.Entity{
		{ID: 101, Name: "Flaming Flamingoes", Kind: model.KindPatrol, Group: "101"},
		{ID: 201, Name: "Troop 101", Kind: model.KindTroop, Group: "101"},
	}
	for _, e := range demo {
		if err := s.store.UpsertEntity(ctx, e); err != nil {
			return err
		}
	}
	s.logger.Info(ctx, "seeded demo entities", logger.Int("count", len(demo)))
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping score ledger service...")
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "store close failed", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "score ledger service stopped")
}

// Submit performs the idempotent ledger write. Both returned statuses are
// success; errors carry the repository sentinel kinds.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (model.SubmitStatus, error) {
	status, err := s.store.SubmitScore(ctx, sub)
	switch {
	case errors.Is(err, repository.ErrInvalidSubmission):
		metrics.RecordSubmissionRejected("invalid_input")
		return "", err
	case errors.Is(err, repository.ErrEntityNotFound):
		metrics.RecordSubmissionRejected("entity_not_found")
		return "", err
	case err != nil:
		metrics.RecordSubmissionRejected("storage")
		return "", err
	}

	if status == model.SubmitAlreadyExists {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission",
			logger.String("submissionID", sub.SubmissionID),
			logger.String("gameID", sub.GameID),
		)
		return status, nil
	}
	metrics.RecordSubmissionCreated()
	return status, nil
}

// ListAll returns per-game raw counts plus every ledger record joined
// against the entity directory.
func (s *Service) ListAll(ctx context.Context) (map[string]int, []model.ScoreRow, error) {
	records, stats, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	metrics.UpdateLedgerRecords(int64(len(records)))
	return stats, records, nil
}

// ExportFlat produces the flattened tabular export of the ledger. When a
// row cap is configured, the newest records survive: ListAll orders by
// recorded_at ascending, so the cap drops from the front.
func (s *Service) ExportFlat(ctx context.Context) (flatten.Table, error) {
	records, _, err := s.store.ListAll(ctx)
	if err != nil {
		return flatten.Table{}, err
	}
	if s.maxExportRows > 0 && len(records) > s.maxExportRows {
		s.logger.Warn(ctx, "export truncated to row cap",
			logger.Int("cap", s.maxExportRows),
			logger.Int("records", len(records)),
		)
		records = records[len(records)-s.maxExportRows:]
	}
	table := flatten.Flatten(records)
	metrics.RecordExport(len(table.Rows))
	return table, nil
}

// Compact collapses each (game, entity) group to its winning record.
// Serialized: a second concurrent call waits for the first to finish.
func (s *Service) Compact(ctx context.Context) (int64, error) {
	s.compactMu.Lock()
	defer s.compactMu.Unlock()

	deleted, err := s.store.Compact(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "compaction finished", logger.Int64("deleted", deleted))
	return deleted, nil
}

// ResetScores clears the ledger. Operator action; entities and judges stay.
func (s *Service) ResetScores(ctx context.Context) (int64, error) {
	deleted, err := s.store.ResetScores(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "scores reset", logger.Int64("deleted", deleted))
	return deleted, nil
}

// Entities lists the entity directory.
func (s *Service) Entities(ctx context.Context) ([]model.Entity, error) {
	return s.store.Entities(ctx)
}

// AddEntity registers a new team.
func (s *Service) AddEntity(ctx context.Context, name string, kind model.EntityKind, group string) (model.Entity, error) {
	e, err := s.store.AddEntity(ctx, name, kind, group)
	if err != nil {
		return model.Entity{}, err
	}
	if count, cerr := s.store.CountEntities(ctx); cerr == nil {
		metrics.UpdateEntityCount(count)
	}
	return e, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
		"dbPath":  s.dbPath,
	}

	if s.started {
		if entities, err := s.store.CountEntities(ctx); err == nil {
			stats["entities"] = entities
			metrics.UpdateEntityCount(entities)
		}
		if counter, ok := s.store.(interface {
			CountScores(ctx context.Context) (int64, error)
		}); ok {
			if n, err := counter.CountScores(ctx); err == nil {
				stats["scores"] = n
				metrics.UpdateLedgerRecords(n)
			}
		}
	}
	return stats
}
