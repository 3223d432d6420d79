// Package model contains domain models passed between layers.
package model

import "encoding/json"

// EntityKind distinguishes the two kinds of competing teams.
type EntityKind string

// Entity kinds.
const (
	KindPatrol EntityKind = "patrol"
	KindTroop  EntityKind = "troop"
)

// Valid reports whether k is one of the known entity kinds.
func (k EntityKind) Valid() bool {
	return k == KindPatrol || k == KindTroop
}

// Entity is a competing team eligible to receive scores. Reference data:
// loaded from the roster, never mutated by the ledger.
type Entity struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Kind  EntityKind `json:"type"`
	Group string     `json:"troop_number"`
}

// Judge identifies a score submitter. Email is the unique key; the stored
// name and unit are whatever the first submission carried.
type Judge struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Unit  string `json:"unit,omitempty"`
}

// Submission is one client-originated score event. SubmissionID is a
// client-generated UUID used as the idempotency key; the payload is an
// opaque JSON object whose keys vary per game.
type Submission struct {
	SubmissionID string
	GameID       string
	EntityID     int64
	Payload      json.RawMessage
	RecordedAt   int64 // milliseconds since epoch, client-supplied
	JudgeEmail   string
	JudgeName    string
	JudgeUnit    string
}

// SubmitStatus reports the outcome of a ledger write. Both values are
// success: already_exists is the idempotent no-op that makes client
// retry-on-timeout safe.
type SubmitStatus string

// Submit outcomes.
const (
	SubmitCreated       SubmitStatus = "created"
	SubmitAlreadyExists SubmitStatus = "already_exists"
)

// ScoreRow is one ledger record joined against the entity directory,
// the shape served by the admin listing and consumed by the flattener.
type ScoreRow struct {
	SubmissionID string          `json:"uuid"`
	GameID       string          `json:"game_id"`
	RecordedAt   int64           `json:"timestamp"`
	EntityName   string          `json:"entity_name"`
	EntityGroup  string          `json:"troop_number"`
	EntityKind   EntityKind      `json:"entity_type"`
	Payload      json.RawMessage `json:"score_payload"`
}
