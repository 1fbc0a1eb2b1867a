// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateStatus(ctx context.Context, id string, status core.Status) error
	UpdateRole(ctx context.Context, id string, role core.Role) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	CountByStatus(ctx context.Context) (map[core.Status]int, error)
	CountByRole(ctx context.Context) (map[core.Role]int, error)
}

const userColumns = `id, full_name, year_of_birth, email, phone, password_hash,
		       role, avatar, status, region_id, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, full_name, year_of_birth, email, phone, password_hash,
			role, avatar, status, region_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.FullName,
		user.YearOfBirth,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.Avatar,
		user.Status,
		user.RegionID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", mapWriteError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", email)
}

func (r *repository) GetByPhone(
	ctx context.Context,
	phone string,
) (*User, error) {
	return r.getOne(ctx, "get user by phone", "phone = $1", phone)
}

func (r *repository) getOne(
	ctx context.Context,
	op, condition string,
	arg any,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s`, userColumns, condition)

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

// Update writes the editable profile columns. Status is deliberately not
// among them: it only moves through UpdateStatus. An Admin row keeps its
// role whatever the caller read before the write.
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET full_name = $2, year_of_birth = $3, email = $4, phone = $5,
		    password_hash = $6,
		    role = CASE WHEN role = 'Admin' THEN role ELSE $7 END,
		    avatar = $8, region_id = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING role, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.FullName,
		user.YearOfBirth,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.Avatar,
		user.RegionID,
	).Scan(&user.Role, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", mapWriteError(err))
	}

	return nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id string,
	status core.Status,
) error {
	query := `
		UPDATE users
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update status", query, id, status)
}

func (r *repository) UpdateRole(
	ctx context.Context,
	id string,
	role core.Role,
) error {
	query := `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update role", query, id, role)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

// Delete removes a non-Admin account. An Admin row is reported as not
// found, which keeps a concurrent promotion from being undone by a delete.
func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1 AND role <> 'Admin'`

	return r.execOne(ctx, "delete user", query, id)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR full_name ILIKE $%d OR phone ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.RegionID > 0 {
		conditions = append(conditions, fmt.Sprintf("region_id = $%d", argIdx))
		args = append(args, params.RegionID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ExistsByPhone(
	ctx context.Context,
	phone string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, phone); err != nil {
		return false, fmt.Errorf("check phone exists: %w", err)
	}

	return exists, nil
}

type groupCount struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

func (r *repository) CountByStatus(
	ctx context.Context,
) (map[core.Status]int, error) {
	var rows []groupCount
	query := `SELECT status AS key, COUNT(*) AS count FROM users GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count users by status: %w", err)
	}

	counts := make(map[core.Status]int, len(rows))
	for _, row := range rows {
		counts[core.Status(row.Key)] = row.Count
	}
	return counts, nil
}

func (r *repository) CountByRole(
	ctx context.Context,
) (map[core.Role]int, error) {
	var rows []groupCount
	query := `SELECT role AS key, COUNT(*) AS count FROM users GROUP BY role`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	counts := make(map[core.Role]int, len(rows))
	for _, row := range rows {
		counts[core.Role(row.Key)] = row.Count
	}
	return counts, nil
}

// mapWriteError turns constraint violations into the errors callers
// surface: 409 for a taken email or phone, 422 for an unknown region.
func mapWriteError(err error) error {
	switch {
	case core.IsDuplicateKeyError(err):
		field := "email"
		if strings.Contains(core.ConstraintName(err), "phone") {
			field = "phone"
		}
		return core.DuplicateError(field)
	case core.IsForeignKeyError(err):
		return core.InvalidReferenceError("region_id", "region does not exist")
	default:
		return err
	}
}
