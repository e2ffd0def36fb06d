// Package outbox persists notification deliveries so a sink outage never
// loses a new-lead notice: failed dispatches stay pending and the scheduled
// worker retries them.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"

	errRepoNotConfigured = "outbox repository not configured"
)

// Delivery kinds.
const (
	KindSinkNewLead       = "sink.new_lead"
	KindEmailNewLead      = "email.new_lead"
	KindEmailLeadAssigned = "email.lead_assigned"
)

// maxAttempts after which a delivery is marked failed instead of retried.
const maxAttempts = 5

type Record struct {
	ID       uuid.UUID
	LeadID   uuid.UUID
	Kind     string
	Payload  json.RawMessage
	RunAt    time.Time
	Status   Status
	Attempts int
}

type InsertParams struct {
	LeadID  uuid.UUID
	Kind    string
	Payload any
	RunAt   time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, p InsertParams) (uuid.UUID, error) {
	if r == nil || r.pool == nil {
		return uuid.Nil, errors.New(errRepoNotConfigured)
	}
	if p.LeadID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("leadId is required")
	}
	if p.Kind == "" {
		return uuid.Nil, fmt.Errorf("kind is required")
	}
	if p.RunAt.IsZero() {
		p.RunAt = time.Now().UTC()
	}

	payloadBytes, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal payload: %w", err)
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx,
		`INSERT INTO notification_outbox (lead_id, kind, payload, run_at, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING id`,
		p.LeadID, p.Kind, payloadBytes, p.RunAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ClaimDue locks and returns due pending deliveries. FOR UPDATE SKIP LOCKED
// lets multiple workers drain the outbox without double-delivering.
func (r *Repository) ClaimDue(ctx context.Context, limit int) ([]Record, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New(errRepoNotConfigured)
	}
	if limit < 1 {
		limit = 50
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `WITH cte AS (
		SELECT id
		FROM notification_outbox
		WHERE status = 'pending' AND run_at <= now()
		ORDER BY run_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	)
	UPDATE notification_outbox o
	SET attempts = attempts + 1, updated_at = now()
	FROM cte
	WHERE o.id = cte.id
	RETURNING o.id, o.lead_id, o.kind, o.payload, o.run_at, o.status, o.attempts`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.LeadID, &rec.Kind, &rec.Payload, &rec.RunAt, &status, &rec.Attempts); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		results = append(results, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE notification_outbox
		 SET status = 'succeeded', last_error = NULL, updated_at = now()
		 WHERE id = $1`,
		id,
	)
	return err
}

// MarkRetry reschedules a failed delivery with a growing backoff, or marks it
// failed for good once the attempt budget is spent.
func (r *Repository) MarkRetry(ctx context.Context, rec Record, lastError string) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}

	if rec.Attempts >= maxAttempts {
		_, err := r.pool.Exec(ctx,
			`UPDATE notification_outbox
			 SET status = 'failed', last_error = $2, updated_at = now()
			 WHERE id = $1`,
			rec.ID, lastError,
		)
		return err
	}

	delay := time.Duration(rec.Attempts*rec.Attempts) * time.Minute
	_, err := r.pool.Exec(ctx,
		`UPDATE notification_outbox
		 SET status = 'pending', run_at = now() + $2, last_error = $3, updated_at = now()
		 WHERE id = $1`,
		rec.ID, delay, lastError,
	)
	return err
}
