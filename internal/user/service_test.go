// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/shop-backend/internal/auth"
	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type fakeRepo struct {
	mu        sync.Mutex
	users     map[string]*User
	listCalls int
	updates   int
}

func newFakeRepo(users ...*User) *fakeRepo {
	f := &fakeRepo{users: make(map[string]*User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return core.DuplicateError("email")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeRepo) find(match func(*User) bool) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	return f.find(func(u *User) bool { return u.ID == id })
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	return f.find(func(u *User) bool { return u.Email == email })
}

func (f *fakeRepo) GetByPhone(_ context.Context, phone string) (*User, error) {
	return f.find(func(u *User) bool { return u.Phone == phone })
}

func (f *fakeRepo) Update(_ context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.users[user.ID]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	f.updates++
	if existing.Role == core.RoleAdmin {
		user.Role = core.RoleAdmin
	}
	cp := *user
	cp.Status = existing.Status
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeRepo) mutate(id string, fn func(*User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status core.Status) error {
	return f.mutate(id, func(u *User) { u.Status = status })
}

func (f *fakeRepo) UpdateRole(_ context.Context, id string, role core.Role) error {
	return f.mutate(id, func(u *User) { u.Role = role })
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return f.mutate(id, func(u *User) { u.PasswordHash = hash })
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ ListUsersParams) ([]User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	users := make([]User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, len(users), nil
}

func (f *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	_, err := f.GetByPhone(ctx, phone)
	return err == nil, nil
}

func (f *fakeRepo) CountByStatus(_ context.Context) (map[core.Status]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[core.Status]int)
	for _, u := range f.users {
		counts[u.Status]++
	}
	return counts, nil
}

func (f *fakeRepo) CountByRole(_ context.Context) (map[core.Role]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[core.Role]int)
	for _, u := range f.users {
		counts[u.Role]++
	}
	return counts, nil
}

func testUser(id string, role core.Role) *User {
	return &User{
		ID:           id,
		FullName:     "Test " + id,
		YearOfBirth:  1995,
		Email:        id + "@example.com",
		Phone:        "+998901234567",
		PasswordHash: "hash",
		Role:         role,
		Status:       core.StatusActive,
		RegionID:     1,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	appErr, ok := core.GetAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	return appErr.StatusCode
}

func ptr[T any](v T) *T {
	return &v
}

func TestCreateStoresInactiveUserWithLowercaseEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	info, err := svc.Create(context.Background(), auth.NewAccount{
		FullName:     "Ali Valiyev",
		YearOfBirth:  1990,
		Email:        "Ali@Example.COM",
		Phone:        "+998901112233",
		PasswordHash: "hash",
		RegionID:     3,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "ali@example.com", info.Email)
	assert.Equal(t, core.RoleUser, info.Role)
	assert.Equal(t, core.StatusInactive, info.Status)
	assert.Equal(t, int64(3), info.RegionID)

	exists, err := svc.EmailExists(context.Background(), "ALI@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestActivate(t *testing.T) {
	u := testUser("u1", core.RoleUser)
	u.Status = core.StatusInactive
	repo := newFakeRepo(u)
	svc := NewService(repo)

	require.NoError(t, svc.Activate(context.Background(), "u1"))

	got, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, got.Status)
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.GetUser(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetMeRequiresCaller(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.GetMe(context.Background(), Caller{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestListUsersScoping(t *testing.T) {
	repo := newFakeRepo(
		testUser("a", core.RoleUser),
		testUser("b", core.RoleSeller),
		testUser("c", core.RoleAdmin),
	)
	svc := NewService(repo)
	ctx := context.Background()

	tests := []struct {
		name      string
		caller    Caller
		wantCount int
		wantRepo  bool
	}{
		{"user sees self", Caller{ID: "a", Role: core.RoleUser}, 1, false},
		{"seller sees self", Caller{ID: "b", Role: core.RoleSeller}, 1, false},
		{"admin sees all", Caller{ID: "c", Role: core.RoleAdmin}, 3, true},
		{"super admin sees all", Caller{ID: "x", Role: core.RoleSuperAdmin}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := repo.listCalls

			users, total, err := svc.ListUsers(ctx, tt.caller, ListUsersParams{})
			require.NoError(t, err)
			assert.Len(t, users, tt.wantCount)
			assert.Equal(t, tt.wantCount, total)
			assert.Equal(t, tt.wantRepo, repo.listCalls > before)

			if !tt.wantRepo {
				assert.Equal(t, tt.caller.ID, users[0].ID)
			}
		})
	}
}

func TestUpdateUserProfileFields(t *testing.T) {
	repo := newFakeRepo(testUser("a", core.RoleUser))
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }

	updated, err := svc.UpdateUser(
		context.Background(),
		Caller{ID: "a", Role: core.RoleUser},
		"a",
		UpdateUserRequest{
			FullName:    ptr("  New Name "),
			YearOfBirth: ptr(2001),
			Email:       ptr(" NEW@Example.com "),
			RegionID:    ptr(int64(9)),
			Avatar:      ptr("https://cdn.example.com/a.png"),
		},
	)
	require.NoError(t, err)

	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, 2001, updated.YearOfBirth)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, int64(9), updated.RegionID)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, core.RoleUser, updated.Role)
	assert.Equal(t, core.StatusActive, updated.Status)
}

type promotingRepo struct {
	*fakeRepo
	promote func()
}

func (p *promotingRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := p.fakeRepo.GetByID(ctx, id)
	if err == nil {
		p.promote()
	}
	return u, err
}

func TestUpdateUserConcurrentPromotionKeepsAdmin(t *testing.T) {
	base := newFakeRepo(testUser("a", core.RoleUser))
	repo := &promotingRepo{fakeRepo: base}
	svc := NewService(repo)
	repo.promote = func() {
		require.NoError(t, base.UpdateRole(context.Background(), "a", core.RoleAdmin))
	}

	updated, err := svc.UpdateUser(
		context.Background(),
		Caller{ID: "a", Role: core.RoleUser},
		"a",
		UpdateUserRequest{FullName: ptr("Renamed")},
	)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, updated.Role)

	stored, err := base.GetByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, stored.Role)
	assert.Equal(t, "Renamed", stored.FullName)
}

func TestUpdateUserRejectsFutureBirthYear(t *testing.T) {
	repo := newFakeRepo(testUser("a", core.RoleUser))
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }

	_, err := svc.UpdateUser(
		context.Background(),
		Caller{ID: "a", Role: core.RoleUser},
		"a",
		UpdateUserRequest{YearOfBirth: ptr(2027)},
	)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
	assert.Zero(t, repo.updates)
}

func TestUpdateUserHashesNewPassword(t *testing.T) {
	repo := newFakeRepo(testUser("a", core.RoleUser))
	svc := NewService(repo)

	_, err := svc.UpdateUser(
		context.Background(),
		Caller{ID: "a", Role: core.RoleUser},
		"a",
		UpdateUserRequest{Password: ptr("newpass123")},
	)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), "a")
	require.NoError(t, err)
	assert.NotEqual(t, "newpass123", stored.PasswordHash)

	ok, err := core.VerifyPassword("newpass123", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateUserRoleRules(t *testing.T) {
	tests := []struct {
		name       string
		caller     Caller
		targetRole core.Role
		newRole    core.Role
		wantStatus int
		wantAdmin  bool
	}{
		{
			name:       "admin sets seller",
			caller:     Caller{ID: "admin", Role: core.RoleAdmin},
			targetRole: core.RoleUser,
			newRole:    core.RoleSeller,
		},
		{
			name:       "super admin sets user",
			caller:     Caller{ID: "root", Role: core.RoleSuperAdmin},
			targetRole: core.RoleSeller,
			newRole:    core.RoleUser,
		},
		{
			name:       "user cannot change own role",
			caller:     Caller{ID: "t", Role: core.RoleUser},
			targetRole: core.RoleUser,
			newRole:    core.RoleSeller,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin cannot grant admin",
			caller:     Caller{ID: "admin", Role: core.RoleAdmin},
			targetRole: core.RoleUser,
			newRole:    core.RoleAdmin,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin cannot grant super admin",
			caller:     Caller{ID: "admin", Role: core.RoleAdmin},
			targetRole: core.RoleUser,
			newRole:    core.RoleSuperAdmin,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin target is protected",
			caller:     Caller{ID: "root", Role: core.RoleSuperAdmin},
			targetRole: core.RoleAdmin,
			newRole:    core.RoleUser,
			wantStatus: http.StatusForbidden,
			wantAdmin:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(testUser("t", tt.targetRole))
			svc := NewService(repo)

			updated, err := svc.UpdateUser(
				context.Background(),
				tt.caller,
				"t",
				UpdateUserRequest{Role: ptr(string(tt.newRole))},
			)

			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
				assert.Equal(t, tt.wantAdmin, errors.Is(err, ErrAdminProtected))
				assert.Zero(t, repo.updates)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.newRole, updated.Role)
		})
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.UpdateUser(
		context.Background(),
		Caller{ID: "a", Role: core.RoleAdmin},
		"missing",
		UpdateUserRequest{FullName: ptr("Some Name")},
	)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestPromoteToAdmin(t *testing.T) {
	repo := newFakeRepo(testUser("a", core.RoleSeller))
	svc := NewService(repo)
	ctx := context.Background()

	promoted, err := svc.PromoteToAdmin(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, promoted.Role)

	again, err := svc.PromoteToAdmin(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, again.Role)

	_, err = svc.PromoteToAdmin(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name       string
		caller     Caller
		targetID   string
		targetRole core.Role
		wantStatus int
	}{
		{
			name:       "self delete",
			caller:     Caller{ID: "t", Role: core.RoleUser},
			targetID:   "t",
			targetRole: core.RoleUser,
		},
		{
			name:       "admin deletes seller",
			caller:     Caller{ID: "admin", Role: core.RoleAdmin},
			targetID:   "t",
			targetRole: core.RoleSeller,
		},
		{
			name:       "other user forbidden",
			caller:     Caller{ID: "someone", Role: core.RoleUser},
			targetID:   "t",
			targetRole: core.RoleUser,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "super admin is not admin",
			caller:     Caller{ID: "root", Role: core.RoleSuperAdmin},
			targetID:   "t",
			targetRole: core.RoleUser,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin target forbidden for admin",
			caller:     Caller{ID: "admin", Role: core.RoleAdmin},
			targetID:   "t",
			targetRole: core.RoleAdmin,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin cannot delete self",
			caller:     Caller{ID: "t", Role: core.RoleAdmin},
			targetID:   "t",
			targetRole: core.RoleAdmin,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing account",
			caller:     Caller{ID: "admin", Role: core.RoleAdmin},
			targetID:   "missing",
			targetRole: core.RoleUser,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(testUser("t", tt.targetRole))
			svc := NewService(repo)

			err := svc.Remove(context.Background(), tt.caller, tt.targetID)

			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
				_, getErr := repo.GetByID(context.Background(), "t")
				assert.NoError(t, getErr)
				return
			}

			require.NoError(t, err)
			_, getErr := repo.GetByID(context.Background(), "t")
			assert.ErrorIs(t, getErr, core.ErrNotFound)
		})
	}
}

func TestCounts(t *testing.T) {
	inactive := testUser("c", core.RoleSeller)
	inactive.Status = core.StatusInactive

	svc := NewService(newFakeRepo(
		testUser("a", core.RoleUser),
		testUser("b", core.RoleAdmin),
		inactive,
	))

	counts, err := svc.Counts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 2, counts.ByStatus[core.StatusActive])
	assert.Equal(t, 1, counts.ByStatus[core.StatusInactive])
	assert.Equal(t, 1, counts.ByRole[core.RoleAdmin])
	assert.Equal(t, 1, counts.ByRole[core.RoleSeller])
}
