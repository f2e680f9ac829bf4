package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// DefaultSnapshotRetention is how many revisions the postgres repository keeps.
const DefaultSnapshotRetention = 20

type snapshotRepoPG struct {
	pool   *pgxpool.Pool
	retain int
}

// NewSnapshotRepoPG stores snapshots as JSONB revisions in clinic_snapshot.
func NewSnapshotRepoPG(pool *pgxpool.Pool, retain int) SnapshotRepository {
	if retain <= 0 {
		retain = DefaultSnapshotRetention
	}
	return &snapshotRepoPG{pool: pool, retain: retain}
}

func (r *snapshotRepoPG) Load(ctx context.Context) (*Snapshot, error) {
	return loadLatest(ctx, r.pool)
}

func loadLatest(ctx context.Context, q queryable) (*Snapshot, error) {
	var payload []byte
	err := q.QueryRow(ctx, `
		SELECT payload FROM clinic_snapshot
		ORDER BY taken_at DESC, seq DESC
		LIMIT 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes a new revision and prunes revisions beyond the retention window
// in the same transaction.
func (r *snapshotRepoPG) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Revision == "" {
		snap.Revision = uuid.New().String()
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO clinic_snapshot (revision, taken_at, patient_count, doctor_count, payload)
		VALUES ($1, $2, $3, $4, $5)`,
		snap.Revision, snap.TakenAt, len(snap.Patients), len(snap.Doctors), payload); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM clinic_snapshot
		WHERE seq NOT IN (
			SELECT seq FROM clinic_snapshot ORDER BY taken_at DESC, seq DESC LIMIT $1
		)`, r.retain); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return tx.Commit(ctx)
}

// SnapshotRevision describes one stored revision without its payload.
type SnapshotRevision struct {
	Revision     string `json:"revision"`
	TakenAt      string `json:"taken_at"`
	PatientCount int    `json:"patient_count"`
	DoctorCount  int    `json:"doctor_count"`
}

// ListSnapshotRevisions returns the stored revisions, newest first.
func ListSnapshotRevisions(ctx context.Context, pool *pgxpool.Pool) ([]SnapshotRevision, error) {
	rows, err := pool.Query(ctx, `
		SELECT revision, to_char(taken_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), patient_count, doctor_count
		FROM clinic_snapshot
		ORDER BY taken_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRevision
	for rows.Next() {
		var rev SnapshotRevision
		if err := rows.Scan(&rev.Revision, &rev.TakenAt, &rev.PatientCount, &rev.DoctorCount); err != nil {
			return nil, fmt.Errorf("scan snapshot revision: %w", err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}
