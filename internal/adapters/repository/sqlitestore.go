package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// SQLite-backed Store implementation.
//
// The submission id is the primary key of the scores table, so the
// idempotent write path is a single INSERT ... ON CONFLICT DO NOTHING and
// judge resolution is an upsert with read-back. Both run inside one
// transaction per submission; SQLite's single-writer model gives the
// required atomicity without any in-process locking.

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT CHECK(type IN ('patrol', 'troop')) NOT NULL,
	troop_number TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS judges (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	unit TEXT
);

CREATE TABLE IF NOT EXISTS scores (
	uuid TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	score_payload TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	judge_id INTEGER,
	FOREIGN KEY(entity_id) REFERENCES entities(id),
	FOREIGN KEY(judge_id) REFERENCES judges(id)
);

CREATE INDEX IF NOT EXISTS idx_scores_game_entity ON scores(game_id, entity_id);
`

// SQLiteStore persists the score ledger in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the ledger database at path and ensures
// the schema exists. WAL mode keeps readers from blocking the writer.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: db path must not be empty", ErrStorage)
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under concurrent submissions.
	db.SetMaxOpenConns(1)
	for _, opt := range opts {
		opt(db)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStorage, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ensure schema: %v", ErrStorage, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// validate checks the presence of every required submission field.
func validate(sub model.Submission) error {
	switch {
	case strings.TrimSpace(sub.SubmissionID) == "":
		return fmt.Errorf("%w: missing submission id", ErrInvalidSubmission)
	case strings.TrimSpace(sub.GameID) == "":
		return fmt.Errorf("%w: missing game id", ErrInvalidSubmission)
	case sub.EntityID == 0:
		return fmt.Errorf("%w: missing entity id", ErrInvalidSubmission)
	case len(sub.Payload) == 0:
		return fmt.Errorf("%w: missing payload", ErrInvalidSubmission)
	}
	if !json.Valid(sub.Payload) {
		return fmt.Errorf("%w: payload is not valid JSON", ErrInvalidSubmission)
	}
	return nil
}

// SubmitScore performs the idempotent ledger write described by the Store
// contract: entity check, judge resolution and the conditional insert all
// happen in one transaction.
func (s *SQLiteStore) SubmitScore(ctx context.Context, sub model.Submission) (model.SubmitStatus, error) {
	if err := validate(sub); err != nil {
		return "", err
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM entities WHERE id = ?`, sub.EntityID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: entity %d", ErrEntityNotFound, sub.EntityID)
	}
	if err != nil {
		return "", fmt.Errorf("%w: entity lookup: %v", ErrStorage, err)
	}

	judgeID, err := resolveJudgeTx(ctx, tx, sub.JudgeEmail, sub.JudgeName, sub.JudgeUnit)
	if err != nil {
		return "", err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scores (uuid, game_id, entity_id, score_payload, timestamp, judge_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO NOTHING`,
		sub.SubmissionID, sub.GameID, sub.EntityID, string(sub.Payload), sub.RecordedAt, judgeID,
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert score: %v", ErrStorage, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%w: rows affected: %v", ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))

	if inserted == 0 {
		return model.SubmitAlreadyExists, nil
	}
	return model.SubmitCreated, nil
}

// ResolveJudge resolves a judge outside of a submission, mostly for tests
// and tooling. The write path uses the transactional variant.
func (s *SQLiteStore) ResolveJudge(ctx context.Context, email, name, unit string) (*int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()
	id, err := resolveJudgeTx(ctx, tx, email, name, unit)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return id, nil
}

// resolveJudgeTx maps an email to a judge id, creating the judge when both
// email and name are present. The no-op DO UPDATE makes RETURNING yield the
// existing row's id, so concurrent first submissions with the same email
// collapse to a single judge. SET name = name keeps the first write: a later
// submission never rewrites an existing judge's name or unit.
func resolveJudgeTx(ctx context.Context, tx *sql.Tx, email, name, unit string) (*int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil // anonymous submission
	}
	var id int64
	if strings.TrimSpace(name) != "" {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO judges (name, email, unit)
			VALUES (?, ?, NULLIF(?, ''))
			ON CONFLICT(email) DO UPDATE SET name = name
			RETURNING id`,
			name, email, unit,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve judge: %v", ErrStorage, err)
		}
		return &id, nil
	}
	// Email without a name only ever reuses an existing judge; otherwise the
	// submission degrades to anonymous rather than failing.
	err := tx.QueryRowContext(ctx, `SELECT id FROM judges WHERE email = ?`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: judge lookup: %v", ErrStorage, err)
	}
	return &id, nil
}

// JudgeByEmail fetches a judge record by its unique email.
// Returns ErrEntityNotFound-style sql.ErrNoRows mapped to a nil judge.
func (s *SQLiteStore) JudgeByEmail(ctx context.Context, email string) (*model.Judge, error) {
	var (
		j    model.Judge
		unit sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, unit FROM judges WHERE email = ?`, email,
	).Scan(&j.ID, &j.Name, &j.Email, &unit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: judge by email: %v", ErrStorage, err)
	}
	j.Unit = unit.String
	return &j, nil
}

// ListAll returns the full ledger joined against the entity directory plus
// the raw per-game activity counts. Counts include superseded records; this
// is an activity counter, not a leaderboard.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.ScoreRow, map[string]int, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.uuid, s.game_id, s.timestamp, e.name, e.troop_number, e.type, s.score_payload
		FROM scores s JOIN entities e ON s.entity_id = e.id
		ORDER BY s.timestamp ASC, s.uuid ASC`)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list scores: %v", ErrStorage, err)
	}
	defer rows.Close()

	records := make([]model.ScoreRow, 0)
	for rows.Next() {
		var (
			r       model.ScoreRow
			payload string
		)
		if err := rows.Scan(&r.SubmissionID, &r.GameID, &r.RecordedAt, &r.EntityName, &r.EntityGroup, &r.EntityKind, &payload); err != nil {
			return nil, nil, fmt.Errorf("%w: scan score: %v", ErrStorage, err)
		}
		r.Payload = json.RawMessage(payload)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: iterate scores: %v", ErrStorage, err)
	}

	stats := make(map[string]int)
	crows, err := s.db.QueryContext(ctx, `SELECT game_id, COUNT(*) FROM scores GROUP BY game_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: count scores: %v", ErrStorage, err)
	}
	defer crows.Close()
	for crows.Next() {
		var (
			game  string
			count int
		)
		if err := crows.Scan(&game, &count); err != nil {
			return nil, nil, fmt.Errorf("%w: scan count: %v", ErrStorage, err)
		}
		stats[game] = count
	}
	if err := crows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: iterate counts: %v", ErrStorage, err)
	}
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return records, stats, nil
}

// Compact deletes every record that is not the winner of its
// (game_id, entity_id) group. One set-oriented ranked delete, the same
// shape whatever the ledger size, and a no-op when run twice.
func (s *SQLiteStore) Compact(ctx context.Context) (int64, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM scores
		WHERE uuid NOT IN (
			SELECT uuid
			FROM (
				SELECT uuid,
				       ROW_NUMBER() OVER (
				           PARTITION BY game_id, entity_id
				           ORDER BY timestamp DESC, uuid DESC
				       ) AS row_num
				FROM scores
			)
			WHERE row_num = 1
		)`)
	if err != nil {
		return 0, fmt.Errorf("%w: compact: %v", ErrStorage, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", ErrStorage, err)
	}
	metrics.RecordCompaction(deleted, float64(time.Since(start).Milliseconds()))
	return deleted, nil
}

// ResetScores clears the ledger. The entity directory and judge registry
// survive a reset.
func (s *SQLiteStore) ResetScores(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scores`)
	if err != nil {
		return 0, fmt.Errorf("%w: reset scores: %v", ErrStorage, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", ErrStorage, err)
	}
	return deleted, nil
}

// Entities lists the directory ordered the way rosters are printed.
func (s *SQLiteStore) Entities(ctx context.Context) ([]model.Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, troop_number FROM entities ORDER BY troop_number ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list entities: %v", ErrStorage, err)
	}
	defer rows.Close()

	entities := make([]model.Entity, 0)
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Kind, &e.Group); err != nil {
			return nil, fmt.Errorf("%w: scan entity: %v", ErrStorage, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate entities: %v", ErrStorage, err)
	}
	return entities, nil
}

// AddEntity registers a team with a database-assigned id.
func (s *SQLiteStore) AddEntity(ctx context.Context, name string, kind model.EntityKind, group string) (model.Entity, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(group) == "" || !kind.Valid() {
		return model.Entity{}, fmt.Errorf("%w: name, type and troop_number are required", ErrInvalidSubmission)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (name, type, troop_number) VALUES (?, ?, ?)`,
		name, kind, group,
	)
	if err != nil {
		return model.Entity{}, fmt.Errorf("%w: insert entity: %v", ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Entity{}, fmt.Errorf("%w: last insert id: %v", ErrStorage, err)
	}
	return model.Entity{ID: id, Name: name, Kind: kind, Group: group}, nil
}

// UpsertEntity writes roster reference data keyed by the external id.
func (s *SQLiteStore) UpsertEntity(ctx context.Context, e model.Entity) error {
	if e.ID == 0 || strings.TrimSpace(e.Name) == "" || !e.Kind.Valid() {
		return fmt.Errorf("%w: id, name and type are required", ErrInvalidSubmission)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO entities (id, name, type, troop_number) VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, e.Kind, e.Group,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert entity: %v", ErrStorage, err)
	}
	return nil
}

// CountEntities returns the size of the entity directory.
func (s *SQLiteStore) CountEntities(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count entities: %v", ErrStorage, err)
	}
	return n, nil
}

// CountScores returns the raw number of ledger records.
func (s *SQLiteStore) CountScores(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count scores: %v", ErrStorage, err)
	}
	return n, nil
}
