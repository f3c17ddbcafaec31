package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/faq-semantic-index/internal/config"
)

func TestNew_SelectsBackend(t *testing.T) {
	cfg := config.Default().Embedding

	backend, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, backend)
	assert.Equal(t, LocalModelName, backend.Model())

	cfg.Backend = config.BackendRemote
	backend, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, backend)
	assert.Equal(t, "nomic-embed-text", backend.Model())

	cfg.Backend = config.BackendOpenAI
	cfg.OpenAI.APIKey = "test"
	backend, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, backend)

	cfg.Backend = "unknown"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestValidateVectors(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name    string
		vectors [][]float32
		want    int
		wantErr error
	}{
		{"ok", [][]float32{{1, 2}, {3, 4}}, 2, nil},
		{"empty batch", nil, 0, nil},
		{"count mismatch", [][]float32{{1}}, 2, ErrEmbedding},
		{"empty vector", [][]float32{{}}, 1, ErrEmbedding},
		{"dimension mismatch", [][]float32{{1, 2}, {3}}, 2, ErrDimensionMismatch},
		{"nan", [][]float32{{1, nan}}, 1, ErrEmbedding},
		{"inf", [][]float32{{inf, 1}}, 1, ErrEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateVectors(tt.vectors, tt.want)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrEmbedding)
		})
	}
}
