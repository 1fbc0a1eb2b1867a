// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/shop-backend/internal/core"
	"github.com/carterperez-dev/templates/shop-backend/internal/user"
)

const sessionWindow = 24 * time.Hour

type AccountCounter interface {
	Counts(ctx context.Context) (*user.AccountCounts, error)
}

type SessionCounter interface {
	CountSince(ctx context.Context, since time.Time) (int, error)
}

type Handler struct {
	accounts         AccountCounter
	sessions         SessionCounter
	dbStats          func() sql.DBStats
	redisStats       func() *redis.PoolStats
	migrationVersion func(ctx context.Context) (int64, error)
	now              func() time.Time
}

type HandlerConfig struct {
	Accounts         AccountCounter
	Sessions         SessionCounter
	DBStats          func() sql.DBStats
	RedisStats       func() *redis.PoolStats
	MigrationVersion func(ctx context.Context) (int64, error)
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		accounts:         cfg.Accounts,
		sessions:         cfg.Sessions,
		dbStats:          cfg.DBStats,
		redisStats:       cfg.RedisStats,
		migrationVersion: cfg.MigrationVersion,
		now:              time.Now,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.accounts.Counts(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	recent, err := h.sessions.CountSince(ctx, h.now().Add(-sessionWindow))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	response := StatsResponse{
		Accounts: AccountStats{
			Total:    counts.Total,
			ByStatus: make(map[string]int, len(counts.ByStatus)),
			ByRole:   make(map[string]int, len(counts.ByRole)),
		},
		SessionsLast24h: recent,
		Database:        h.getDBStats(),
		Redis:           h.getRedisStats(),
	}
	for status, n := range counts.ByStatus {
		response.Accounts.ByStatus[string(status)] = n
	}
	for role, n := range counts.ByRole {
		response.Accounts.ByRole[role.String()] = n
	}

	if h.migrationVersion != nil {
		if version, err := h.migrationVersion(ctx); err == nil {
			response.SchemaVersion = &version
		}
	}

	core.OK(w, response)
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	core.OK(w, RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	})
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type StatsResponse struct {
	Accounts        AccountStats    `json:"accounts"`
	SessionsLast24h int             `json:"sessions_last_24h"`
	SchemaVersion   *int64          `json:"schema_version,omitempty"`
	Database        *DBPoolStats    `json:"database,omitempty"`
	Redis           *RedisPoolStats `json:"redis,omitempty"`
}

type AccountStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByRole   map[string]int `json:"by_role"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
