package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Model     string `json:"model"`
	Qdrant    string `json:"qdrant,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthChecker interface defines the health check dependency.
// The storage layer implements this via its Health() method.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewHealthHandler creates an HTTP handler for the /health endpoint.
// store may be nil when the server runs without a vector store; Qdrant is then
// omitted from the response.
func NewHealthHandler(model string, store HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "healthy",
			Model:     model,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		status := http.StatusOK

		if store != nil {
			// Create context with 3-second timeout for health check
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := store.Health(ctx); err != nil {
				response.Status = "unhealthy"
				response.Qdrant = "disconnected"
				status = http.StatusServiceUnavailable
			} else {
				response.Qdrant = "connected"
			}
		}

		writeJSON(w, status, response)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
