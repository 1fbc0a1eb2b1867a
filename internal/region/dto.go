// AngelaMos | 2026
// dto.go

package region

import (
	"time"
)

type CreateRegionRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50,alphaname"`
}

type UpdateRegionRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50,alphaname"`
}

type RegionResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListRegionsParams struct {
	Page     int
	PageSize int
	Search   string
}

func (p *ListRegionsParams) Normalize() {
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

func (p ListRegionsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToRegionResponse(r *Region) RegionResponse {
	return RegionResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func ToRegionResponseList(regions []Region) []RegionResponse {
	responses := make([]RegionResponse, 0, len(regions))
	for _, r := range regions {
		responses = append(responses, ToRegionResponse(&r))
	}
	return responses
}
