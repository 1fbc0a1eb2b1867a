// AngelaMos | 2026
// entity.go

package region

import (
	"time"
)

type Region struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
