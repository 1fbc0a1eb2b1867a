// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/shop-backend/internal/auth"
	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

var ErrAdminProtected = errors.New("admin accounts cannot be modified this way")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(
	ctx context.Context,
	account auth.NewAccount,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		FullName:     account.FullName,
		YearOfBirth:  account.YearOfBirth,
		Email:        strings.ToLower(account.Email),
		Phone:        account.Phone,
		PasswordHash: account.PasswordHash,
		Role:         core.RoleUser,
		Avatar:       account.Avatar,
		Status:       core.StatusInactive,
		RegionID:     account.RegionID,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByPhone(
	ctx context.Context,
	phone string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func (s *Service) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return s.repo.ExistsByPhone(ctx, phone)
}

func (s *Service) Activate(ctx context.Context, id string) error {
	return s.repo.UpdateStatus(ctx, id, core.StatusActive)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *Service) GetMe(ctx context.Context, caller Caller) (*User, error) {
	if caller.ID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.GetUser(ctx, caller.ID)
}

// ListUsers returns every account to Admin and SuperAdmin callers. Any
// other caller sees only their own account.
func (s *Service) ListUsers(
	ctx context.Context,
	caller Caller,
	params ListUsersParams,
) ([]User, int, error) {
	if caller.Role.Privileged() {
		return s.repo.List(ctx, params)
	}

	self, err := s.GetMe(ctx, caller)
	if err != nil {
		return nil, 0, err
	}

	return []User{*self}, 1, nil
}

// UpdateUser applies a partial profile update. Role changes are reserved
// to Admin and SuperAdmin callers, may not grant Admin (that is what
// PromoteToAdmin is for) and may not touch an Admin account.
func (s *Service) UpdateUser(
	ctx context.Context,
	caller Caller,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Role != nil {
		if err := s.checkRoleChange(caller, user, core.Role(*req.Role)); err != nil {
			return nil, err
		}
		user.Role = core.Role(*req.Role)
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.YearOfBirth != nil {
		if *req.YearOfBirth > s.now().Year() {
			return nil, core.FieldError("year_of_birth", "must not be in the future")
		}
		user.YearOfBirth = *req.YearOfBirth
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if req.RegionID != nil {
		user.RegionID = *req.RegionID
	}
	if req.Password != nil {
		hash, err := core.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, notFound(err)
	}

	return user, nil
}

func (s *Service) checkRoleChange(caller Caller, target *User, role core.Role) error {
	if !caller.Role.Privileged() {
		return core.ForbiddenError("only administrators can change roles")
	}
	if target.IsAdmin() {
		return fmt.Errorf("%w: %w", ErrAdminProtected,
			core.ForbiddenError("admin roles cannot be changed"))
	}
	if !role.In(core.RoleUser, core.RoleSeller) {
		return core.ForbiddenError("role can only be set to User or Seller")
	}
	return nil
}

// PromoteToAdmin is idempotent: promoting an Admin returns it unchanged.
func (s *Service) PromoteToAdmin(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if user.IsAdmin() {
		return user, nil
	}

	if err := s.repo.UpdateRole(ctx, id, core.RoleAdmin); err != nil {
		return nil, notFound(err)
	}
	user.Role = core.RoleAdmin

	return user, nil
}

// Remove deletes an account. Admin accounts are never deleted, whoever
// asks.
func (s *Service) Remove(ctx context.Context, caller Caller, id string) error {
	if !caller.Owns(id) && caller.Role != core.RoleAdmin {
		return core.ForbiddenError("you can only delete your own account")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}

	if user.IsAdmin() {
		return fmt.Errorf("%w: %w", ErrAdminProtected,
			core.ForbiddenError("admin accounts cannot be deleted"))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}

	return nil
}

func (s *Service) Counts(ctx context.Context) (*AccountCounts, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	byRole, err := s.repo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	return &AccountCounts{
		ByStatus: byStatus,
		ByRole:   byRole,
		Total:    total,
	}, nil
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) && !core.IsAppError(err) {
		return fmt.Errorf("%w: %w", err, core.NotFoundError("user"))
	}
	return err
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		FullName:     u.FullName,
		YearOfBirth:  u.YearOfBirth,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		Avatar:       u.Avatar,
		RegionID:     u.RegionID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
