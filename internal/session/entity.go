// AngelaMos | 2026
// entity.go

package session

import (
	"time"
)

type Session struct {
	ID         int64     `db:"id"`
	UserID     string    `db:"user_id"`
	IPAddress  string    `db:"ip_address"`
	DeviceInfo *string   `db:"device_info"`
	CreatedAt  time.Time `db:"created_at"`
}

type SessionResponse struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	IPAddress  string    `json:"ip_address"`
	DeviceInfo *string   `json:"device_info,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		IPAddress:  s.IPAddress,
		DeviceInfo: s.DeviceInfo,
		CreatedAt:  s.CreatedAt,
	}
}

func ToSessionResponseList(sessions []Session) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, ToSessionResponse(&s))
	}
	return responses
}
