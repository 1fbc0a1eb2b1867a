// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type UpdateUserRequest struct {
	FullName    *string `json:"full_name,omitempty"     validate:"omitempty,min=2,max=25,alphaname"`
	YearOfBirth *int    `json:"year_of_birth,omitempty" validate:"omitempty,gte=1900"`
	Email       *string `json:"email,omitempty"         validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone,omitempty"         validate:"omitempty,uzphone"`
	Password    *string `json:"password,omitempty"      validate:"omitempty,min=8,max=30,alnumpass"`
	Avatar      *string `json:"avatar,omitempty"        validate:"omitempty,max=512"`
	RegionID    *int64  `json:"region_id,omitempty"     validate:"omitempty,gt=0"`
	Role        *string `json:"role,omitempty"          validate:"omitempty,role"`
	Status      *string `json:"status,omitempty"        validate:"isdefault"`
}

type UserResponse struct {
	ID          string      `json:"id"`
	FullName    string      `json:"full_name"`
	YearOfBirth int         `json:"year_of_birth"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Role        core.Role   `json:"role"`
	Status      core.Status `json:"status"`
	Avatar      *string     `json:"avatar,omitempty"`
	RegionID    int64       `json:"region_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Search   string      `json:"search"`
	Role     core.Role   `json:"role"`
	Status   core.Status `json:"status"`
	RegionID int64       `json:"region_id"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type AccountCounts struct {
	ByStatus map[core.Status]int `json:"by_status"`
	ByRole   map[core.Role]int   `json:"by_role"`
	Total    int                 `json:"total"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FullName:    u.FullName,
		YearOfBirth: u.YearOfBirth,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Status:      u.Status,
		Avatar:      u.Avatar,
		RegionID:    u.RegionID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
