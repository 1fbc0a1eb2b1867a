// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func serve(t *testing.T, h *Handler, path string) (int, ReadinessResponse) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	h := NewHandler()

	for _, path := range []string{"/healthz", "/livez"} {
		code, resp := serve(t, h, path)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", resp.Status)
	}
}

func TestReadinessAllHealthy(t *testing.T) {
	h := NewHandler().
		AddCheck("database", CheckerFunc(ok)).
		AddCheck("redis", CheckerFunc(ok))

	code, resp := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, "database", resp.Checks[0].Name)
	assert.Equal(t, "redis", resp.Checks[1].Name)
	for _, c := range resp.Checks {
		assert.True(t, c.Healthy)
		assert.NotEmpty(t, c.Latency)
	}
}

func TestReadinessDegraded(t *testing.T) {
	h := NewHandler().
		AddCheck("database", CheckerFunc(ok)).
		AddCheck("redis", CheckerFunc(func(context.Context) error {
			return errors.New("dial tcp 10.0.0.5:6379: connection refused")
		})).
		AddCheck("broken", nil)

	code, resp := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", resp.Status)

	require.Len(t, resp.Checks, 3)
	assert.True(t, resp.Checks[0].Healthy)
	assert.False(t, resp.Checks[1].Healthy)
	assert.Equal(t, "ping failed", resp.Checks[1].Message)
	assert.NotContains(t, resp.Checks[1].Message, "10.0.0.5")
	assert.False(t, resp.Checks[2].Healthy)
}

func TestReadinessHonorsLifecycle(t *testing.T) {
	h := NewHandler().AddCheck("database", CheckerFunc(ok))

	h.SetReady(false)
	code, resp := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", resp.Status)

	h.SetReady(true)
	h.SetShutdown(true)
	code, resp = serve(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "shutting_down", resp.Status)

	code, _ = serve(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
