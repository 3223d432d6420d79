// Package repository defines the score ledger store interface and errors.
package repository

import (
	"context"

	"github.com/okian/tally/internal/domain/model"
)

// Store provides transactional access to the score ledger, the judge
// registry and the entity directory.
type Store interface {
	// SubmitScore performs an idempotent insert keyed by the submission id.
	// Returns SubmitCreated when a new record was written and
	// SubmitAlreadyExists when a record with the same id was already there;
	// both outcomes are success.
	SubmitScore(ctx context.Context, sub model.Submission) (model.SubmitStatus, error)

	// ResolveJudge maps a judge email to a stable judge id, creating the
	// judge when email and name are both present. A nil id means the
	// submission proceeds as anonymous. Existing name/unit are never
	// overwritten: first write wins.
	ResolveJudge(ctx context.Context, email, name, unit string) (*int64, error)

	// ListAll returns every ledger record joined against the entity
	// directory, ordered by (recorded_at, submission id), plus a raw
	// per-game record count.
	ListAll(ctx context.Context) ([]model.ScoreRow, map[string]int, error)

	// Compact keeps only the winning record per (game, entity) pair:
	// max recorded_at, then max submission id. Returns the number of
	// superseded records deleted. Idempotent.
	Compact(ctx context.Context) (int64, error)

	// ResetScores deletes every ledger record. Entities and judges stay.
	ResetScores(ctx context.Context) (int64, error)

	// Entities lists the entity directory ordered by (group, name).
	Entities(ctx context.Context) ([]model.Entity, error)

	// AddEntity registers a new team with an assigned id.
	AddEntity(ctx context.Context, name string, kind model.EntityKind, group string) (model.Entity, error)

	// UpsertEntity writes roster reference data by external id.
	UpsertEntity(ctx context.Context, e model.Entity) error

	// CountEntities returns the number of entities in the directory.
	CountEntities(ctx context.Context) (int64, error)

	// Close releases the underlying database handle.
	Close() error
}
