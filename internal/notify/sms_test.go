// AngelaMos | 2026
// sms_test.go

package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/shop-backend/internal/config"
)

type eskizCall struct {
	method string
	path   string
	auth   string
	form   url.Values
}

func newEskizServer(t *testing.T, status int, body string) (*httptest.Server, *eskizCall) {
	t.Helper()

	call := &eskizCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		call.method = r.Method
		call.path = r.URL.Path
		call.auth = r.Header.Get("Authorization")
		call.form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, call
}

func newTestEskiz(url string) *EskizSender {
	return NewEskizSender(config.EskizConfig{
		BaseURL: url + "/",
		Token:   "eskiz-test-token",
		From:    "4546",
		Timeout: 2 * time.Second,
	})
}

func TestEskizSendSMS(t *testing.T) {
	srv, call := newEskizServer(t, http.StatusOK,
		`{"id":"42","status":"waiting","message":"Waiting for SMS provider"}`)

	err := newTestEskiz(srv.URL).SendSMS(context.Background(), "+998901234567", "Code: 123456")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/message/sms/send", call.path)
	assert.Equal(t, "Bearer eskiz-test-token", call.auth)
	assert.Equal(t, "998901234567", call.form.Get("mobile_phone"))
	assert.Equal(t, "Code: 123456", call.form.Get("message"))
	assert.Equal(t, "4546", call.form.Get("from"))
}

func TestEskizClientErrorIsPermanent(t *testing.T) {
	srv, _ := newEskizServer(t, http.StatusUnauthorized, `{"message":"Expired token"}`)

	err := newTestEskiz(srv.URL).SendSMS(context.Background(), "+998901234567", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Contains(t, err.Error(), "Expired token")
}

func TestEskizServerErrorIsRetryable(t *testing.T) {
	srv, _ := newEskizServer(t, http.StatusBadGateway, `{"message":"upstream"}`)

	err := newTestEskiz(srv.URL).SendSMS(context.Background(), "+998901234567", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)

	srv, _ = newEskizServer(t, http.StatusTooManyRequests, `{"message":"slow down"}`)
	err = newTestEskiz(srv.URL).SendSMS(context.Background(), "+998901234567", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}
