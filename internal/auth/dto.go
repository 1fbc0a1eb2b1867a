// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
)

type RegisterRequest struct {
	FullName    string  `json:"full_name"     validate:"required,min=2,max=25,alphaname"`
	YearOfBirth int     `json:"year_of_birth" validate:"required,gte=1900"`
	Email       string  `json:"email"         validate:"required,email,max=255"`
	Phone       string  `json:"phone"         validate:"required,uzphone"`
	Password    string  `json:"password"      validate:"required,min=8,max=30,alnumpass"`
	Avatar      *string `json:"avatar"        validate:"omitempty,max=512"`
	RegionID    int64   `json:"region_id"     validate:"required,gt=0"`
}

type VerifyOtpRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	OTP   string `json:"otp"   validate:"required,numeric,min=6,max=8"`
}

type ResendOtpRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SendOtpPhoneRequest struct {
	Phone string `json:"phone" validate:"required,uzphone"`
}

type VerifyOtpPhoneRequest struct {
	Phone string `json:"phone" validate:"required,uzphone"`
	OTP   string `json:"otp"   validate:"required,numeric,min=6,max=8"`
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

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

type OtpDispatchResponse struct {
	Destination string `json:"destination"`
	ExpiresIn   int    `json:"expires_in"`
}

func ToUserResponse(u *UserInfo) UserResponse {
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
