// AngelaMos | 2026
// service.go

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a login to the ledger. Sessions are never updated.
func (s *Service) Record(
	ctx context.Context,
	userID, ipAddress, deviceInfo string,
) error {
	session := &Session{
		UserID:    userID,
		IPAddress: ipAddress,
	}
	if deviceInfo != "" {
		session.DeviceInfo = &deviceInfo
	}

	return s.repo.Create(ctx, session)
}

func (s *Service) Latest(ctx context.Context, userID string) (*Session, error) {
	session, err := s.repo.Latest(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return session, nil
}

func (s *Service) DeleteLatest(ctx context.Context, userID string) (*Session, error) {
	session, err := s.repo.DeleteLatest(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return session, nil
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	limit int,
) ([]Session, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return s.repo.ListForUser(ctx, userID, limit)
}

func (s *Service) CountSince(ctx context.Context, since time.Time) (int, error) {
	return s.repo.CountSince(ctx, since)
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %w", err, core.NotFoundError("session"))
	}
	return err
}
