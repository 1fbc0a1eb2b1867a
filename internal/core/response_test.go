// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONErrorWrappedAppError(t *testing.T) {
	rec := httptest.NewRecorder()

	err := fmt.Errorf("get user: %w", NotFoundError("user"))
	JSONError(rec, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, false, body["success"])

	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
	assert.Equal(t, "user not found", errBody["message"])
}

func TestJSONErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	JSONError(rec, errors.New("pq: connection refused to 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")

	errBody := decodeResponse(t, rec)["error"].(map[string]any)
	assert.Equal(t, "INTERNAL_ERROR", errBody["code"])
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()

	Paginated(rec, []int{1, 2}, 2, 2, 5)

	assert.Equal(t, http.StatusOK, rec.Code)
	meta := decodeResponse(t, rec)["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["page"])
	assert.EqualValues(t, 5, meta["total"])
	assert.EqualValues(t, 3, meta["total_pages"])
}

func TestCreatedAndNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, "region created", map[string]string{"name": "Tashkent"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, "region created", body["message"])

	rec = httptest.NewRecorder()
	NoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestValidationFailedDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	err := NewValidator().Struct(validationSample{})
	ValidationFailed(rec, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decodeResponse(t, rec)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.Contains(t, errBody["details"], "full_name")
}
