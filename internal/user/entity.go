// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type User struct {
	ID           string      `db:"id"`
	FullName     string      `db:"full_name"`
	YearOfBirth  int         `db:"year_of_birth"`
	Email        string      `db:"email"`
	Phone        string      `db:"phone"`
	PasswordHash string      `db:"password_hash"`
	Role         core.Role   `db:"role"`
	Avatar       *string     `db:"avatar"`
	Status       core.Status `db:"status"`
	RegionID     int64       `db:"region_id"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == core.RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == core.StatusActive
}

// Caller is the authenticated principal acting on an account.
type Caller struct {
	ID   string
	Role core.Role
}

func (c Caller) Owns(userID string) bool {
	return c.ID != "" && c.ID == userID
}
