package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekretariat-digital/bukutamu/internal/models"
)

var ErrNotFound = errors.New("not found")

type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `id, name, date, location, description, status, qr_token, created_at, updated_at, deleted_at`

func (r *PostgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `INSERT INTO events (name, date, location, description, status, qr_token)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		event.Name,
		event.Date,
		event.Location,
		event.Description,
		event.Status,
		event.QRToken,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND deleted_at IS NULL`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresEventRepository) GetByQRToken(ctx context.Context, qrToken string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE qr_token = $1 AND deleted_at IS NULL`
	return r.scanOne(r.pool.QueryRow(ctx, query, qrToken))
}

func (r *PostgresEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE deleted_at IS NULL ORDER BY date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var event models.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.EventStatus) error {
	query := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepository) UpdateQRToken(ctx context.Context, id uuid.UUID, qrToken string) error {
	query := `UPDATE events SET qr_token = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query, qrToken, id)
	if err != nil {
		return fmt.Errorf("failed to update qr token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE events SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepository) scanOne(row pgx.Row) (*models.Event, error) {
	var event models.Event
	err := scanEvent(row, &event)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func scanEvent(row pgx.Row, event *models.Event) error {
	return row.Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.Location,
		&event.Description,
		&event.Status,
		&event.QRToken,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.DeletedAt,
	)
}
