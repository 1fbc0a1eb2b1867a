// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"database/sql"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var userRowColumns = []string{
	"id", "full_name", "year_of_birth", "email", "phone", "password_hash",
	"role", "avatar", "status", "region_id", "created_at", "updated_at",
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	u := testUser("u1", core.RoleUser)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(u.ID, u.FullName, u.YearOfBirth, u.Email, u.Phone,
			u.PasswordHash, "User", nil, "Active", u.RegionID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(created, created))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, created, u.CreatedAt)
	assert.Equal(t, created, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateMapsConstraintViolations(t *testing.T) {
	tests := []struct {
		name       string
		pgErr      *pgconn.PgError
		wantStatus int
		wantField  string
	}{
		{
			name:       "duplicate email",
			pgErr:      &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "duplicate phone",
			pgErr:      &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown region",
			pgErr:      &pgconn.PgError{Code: "23503", ConstraintName: "users_region_id_fkey"},
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "region_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(tt.pgErr)

			err := repo.Create(context.Background(), testUser("u1", core.RoleUser))
			require.Error(t, err)

			appErr, ok := core.GetAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			if tt.wantField != "" {
				assert.Contains(t, appErr.Details, tt.wantField)
			}
		})
	}
}

func TestMapWriteErrorNamesField(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"users_email_key", "email already exists"},
		{"users_phone_key", "phone already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := mapWriteError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			appErr, ok := core.GetAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, appErr.Message)
			assert.ErrorIs(t, err, core.ErrDuplicateKey)
		})
	}

	assert.Equal(t, sql.ErrConnDone, mapWriteError(sql.ErrConnDone))
}

func TestRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"u1", "Ali Valiyev", 1990, "ali@example.com", "+998901112233",
			"hash", "Seller", nil, "Active", int64(4), now, now,
		))

	u, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ali Valiyev", u.FullName)
	assert.Equal(t, core.RoleSeller, u.Role)
	assert.Equal(t, core.StatusActive, u.Status)
	assert.Nil(t, u.Avatar)
	assert.Equal(t, int64(4), u.RegionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryUpdateKeepsAdminRole(t *testing.T) {
	repo, mock := newMockRepo(t)
	updated := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	u := testUser("u1", core.RoleUser)
	u.FullName = "Renamed User"

	mock.ExpectQuery(regexp.QuoteMeta(
		"role = CASE WHEN role = 'Admin' THEN role ELSE $7 END")).
		WithArgs(u.ID, "Renamed User", u.YearOfBirth, u.Email, u.Phone,
			u.PasswordHash, "User", nil, u.RegionID).
		WillReturnRows(sqlmock.NewRows([]string{"role", "updated_at"}).
			AddRow("Admin", updated))

	require.NoError(t, repo.Update(context.Background(), u))
	assert.Equal(t, core.RoleAdmin, u.Role)
	assert.Equal(t, updated, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WillReturnRows(sqlmock.NewRows([]string{"role", "updated_at"}))

	err := repo.Update(context.Background(), testUser("missing", core.RoleUser))
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatusNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("missing", "Active").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", core.StatusActive)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteSkipsAdmins(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1 AND role <> 'Admin'")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE TRUE AND (email ILIKE $1")).
		WithArgs(`%50\%%`, "Seller", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $4 OFFSET $5")).
		WithArgs(`%50\%%`, "Seller", int64(2), 10, 10).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"u1", "Ali Valiyev", 1990, "ali50%@example.com", "+998901112233",
			"hash", "Seller", nil, "Active", int64(2), now, now,
		))

	users, total, err := repo.List(context.Background(), ListUsersParams{
		Page:     2,
		PageSize: 10,
		Search:   "50%",
		Role:     core.RoleSeller,
		RegionID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCountByRole(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY role")).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("User", 7).
			AddRow("Admin", 1))

	counts, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[core.Role]int{core.RoleUser: 7, core.RoleAdmin: 1}, counts)
}
