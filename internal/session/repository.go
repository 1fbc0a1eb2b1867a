// AngelaMos | 2026
// repository.go

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	Latest(ctx context.Context, userID string) (*Session, error)
	DeleteLatest(ctx context.Context, userID string) (*Session, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]Session, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (user_id, ip_address, device_info)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		session.UserID,
		session.IPAddress,
		session.DeviceInfo,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create session: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) Latest(ctx context.Context, userID string) (*Session, error) {
	query := `
		SELECT id, user_id, ip_address, device_info, created_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var session Session
	err := r.db.GetContext(ctx, &session, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest session: %w", err)
	}

	return &session, nil
}

// DeleteLatest removes the newest session in one statement so that two
// concurrent calls never delete the same row twice.
func (r *repository) DeleteLatest(
	ctx context.Context,
	userID string,
) (*Session, error) {
	query := `
		DELETE FROM sessions
		WHERE id = (
			SELECT id FROM sessions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id, user_id, ip_address, device_info, created_at`

	var session Session
	err := r.db.GetContext(ctx, &session, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delete latest session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete latest session: %w", err)
	}

	return &session, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
	limit int,
) ([]Session, error) {
	query := `
		SELECT id, user_id, ip_address, device_info, created_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) CountSince(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE created_at >= $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, since); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}

	return count, nil
}
