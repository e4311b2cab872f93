package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekretariat-digital/bukutamu/internal/models"
)

// ErrAlreadySubmitted is returned when the (event_id, device_id) unique index
// rejects an insert. This is the invariant the whole guest flow rests on: the
// database decides who submitted first, not the client.
var ErrAlreadySubmitted = errors.New("device already submitted for this event")

const uniqueViolationCode = "23505"

type PostgresSubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSubmissionRepository(pool *pgxpool.Pool) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{pool: pool}
}

func (r *PostgresSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `INSERT INTO submissions (event_id, device_id, full_name, institution, position, purpose, photo_paths)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		submission.EventID,
		submission.DeviceID,
		submission.FullName,
		submission.Institution,
		submission.Position,
		submission.Purpose,
		submission.PhotoPaths,
	).Scan(&submission.ID, &submission.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrAlreadySubmitted
	}
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	submission.PhotoCount = len(submission.PhotoPaths)
	return nil
}

func (r *PostgresSubmissionRepository) GetByEventAndDevice(ctx context.Context, eventID uuid.UUID, deviceID string) (*models.Submission, error) {
	query := `SELECT id, event_id, device_id, full_name, institution, position, purpose, photo_paths, created_at
              FROM submissions
              WHERE event_id = $1 AND device_id = $2`

	var submission models.Submission
	err := r.pool.QueryRow(ctx, query, eventID, deviceID).Scan(
		&submission.ID,
		&submission.EventID,
		&submission.DeviceID,
		&submission.FullName,
		&submission.Institution,
		&submission.Position,
		&submission.Purpose,
		&submission.PhotoPaths,
		&submission.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	submission.PhotoCount = len(submission.PhotoPaths)
	return &submission, nil
}

func (r *PostgresSubmissionRepository) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Submission, error) {
	query := `SELECT id, event_id, device_id, full_name, institution, position, purpose, photo_paths, created_at
              FROM submissions
              WHERE event_id = $1
              ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		var submission models.Submission
		err := rows.Scan(
			&submission.ID,
			&submission.EventID,
			&submission.DeviceID,
			&submission.FullName,
			&submission.Institution,
			&submission.Position,
			&submission.Purpose,
			&submission.PhotoPaths,
			&submission.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submission.PhotoCount = len(submission.PhotoPaths)
		submissions = append(submissions, &submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return submissions, nil
}
