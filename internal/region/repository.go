// AngelaMos | 2026
// repository.go

package region

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, region *Region) error
	GetByID(ctx context.Context, id int64) (*Region, error)
	Update(ctx context.Context, region *Region) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListRegionsParams) ([]Region, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, region *Region) error {
	query := `
		INSERT INTO regions (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, region.Name).
		Scan(&region.ID, &region.CreatedAt, &region.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create region: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Region, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM regions
		WHERE id = $1`

	var region Region
	err := r.db.GetContext(ctx, &region, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get region: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get region: %w", err)
	}

	return &region, nil
}

func (r *repository) Update(ctx context.Context, region *Region) error {
	query := `
		UPDATE regions
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, region.ID, region.Name).
		Scan(&region.CreatedAt, &region.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update region: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update region: %w", err)
	}

	return nil
}

// Delete cascades to every user in the region.
func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM regions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete region: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListRegionsParams,
) ([]Region, int, error) {
	params.Normalize()

	whereClause := "TRUE"
	var args []any
	if params.Search != "" {
		whereClause = "name ILIKE $1"
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM regions WHERE %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count regions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at
		FROM regions
		WHERE %s
		ORDER BY name, id
		LIMIT $%d OFFSET $%d`,
		whereClause, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	var regions []Region
	if err := r.db.SelectContext(ctx, &regions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list regions: %w", err)
	}

	return regions, total, nil
}
