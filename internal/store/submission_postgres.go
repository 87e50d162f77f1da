package store

import (
	"context"

	"github.com/agentsystems/notary-arweave-bundler/internal/submission"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionPostgresStore is a PostgreSQL implementation of submission.Recorder.
type SubmissionPostgresStore struct {
	pool *pgxpool.Pool
}

// NewSubmissionPostgresStore creates a new PostgreSQL-backed submission recorder.
func NewSubmissionPostgresStore(pool *pgxpool.Pool) *SubmissionPostgresStore {
	return &SubmissionPostgresStore{pool: pool}
}

// EnsureTable creates the submissions table when it does not exist yet.
func (p *SubmissionPostgresStore) EnsureTable(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS submissions (
			id          TEXT PRIMARY KEY,
			hash        TEXT NOT NULL,
			kms_key_arn TEXT NOT NULL,
			gateway_url TEXT NOT NULL,
			client_ip   TEXT,
			user_agent  TEXT,
			queued_at   TIMESTAMPTZ NOT NULL
		)
	`)

	return err
}

// Record inserts the submission. Redelivered events are ignored.
func (p *SubmissionPostgresStore) Record(ctx context.Context, event *submission.Queued) error {
	query := `
		INSERT INTO submissions (id, hash, kms_key_arn, gateway_url, client_ip, user_agent, queued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.ID,
		event.Hash,
		event.KMSKeyARN,
		event.GatewayURL,
		event.ClientIP,
		event.UserAgent,
		event.QueuedAt,
	)

	return err
}

// Compile-time check.
var _ submission.Recorder = (*SubmissionPostgresStore)(nil)
