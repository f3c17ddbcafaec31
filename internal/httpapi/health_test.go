package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct{ err error }

func (f fakeChecker) Health(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		store      HealthChecker
		wantCode   int
		wantStatus string
		wantQdrant string
	}{
		{"no store", nil, http.StatusOK, "healthy", ""},
		{"store connected", fakeChecker{}, http.StatusOK, "healthy", "connected"},
		{"store down", fakeChecker{err: errors.New("refused")}, http.StatusServiceUnavailable, "unhealthy", "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler("hashing-ngram-v1", tt.store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantQdrant, resp.Qdrant)
			assert.Equal(t, "hashing-ngram-v1", resp.Model)
			assert.NotEmpty(t, resp.Timestamp)
		})
	}
}
