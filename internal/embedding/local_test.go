package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Dimension(t *testing.T) {
	local := NewLocal(128)

	vectors, err := local.Embed(context.Background(), []string{"Apa itu margin?", "Cara reset password"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 128)
	assert.Len(t, vectors[1], 128)
	assert.Equal(t, 128, local.Dimension())
}

func TestLocal_Deterministic(t *testing.T) {
	local := NewLocal(64)
	ctx := context.Background()

	first, err := local.Embed(ctx, []string{"Laporan penjualan margin buat apa?"})
	require.NoError(t, err)
	second, err := local.Embed(ctx, []string{"Laporan penjualan margin buat apa?"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLocal_Normalized(t *testing.T) {
	local := NewLocal(256)

	vectors, err := local.Embed(context.Background(), []string{"Bagaimana cara membayar tagihan?"})
	require.NoError(t, err)

	var sumSq float64
	for _, v := range vectors[0] {
		sumSq += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-5)
}

func TestLocal_SimilarTextsScoreHigher(t *testing.T) {
	local := NewLocal(512)

	vectors, err := local.Embed(context.Background(), []string{
		"apa itu margin penjualan",
		"margin penjualan itu apa",
		"cara mengganti password akun",
	})
	require.NoError(t, err)

	related := dot(vectors[0], vectors[1])
	unrelated := dot(vectors[0], vectors[2])
	assert.Greater(t, related, unrelated)
}

func TestLocal_CaseInsensitive(t *testing.T) {
	local := NewLocal(64)

	vectors, err := local.Embed(context.Background(), []string{"Margin", "margin"})
	require.NoError(t, err)
	assert.Equal(t, vectors[0], vectors[1])
}

func TestLocal_EmptyText(t *testing.T) {
	local := NewLocal(64)

	vectors, err := local.Embed(context.Background(), []string{"ok", "   "})
	assert.ErrorIs(t, err, ErrEmbedding)
	assert.Nil(t, vectors)
}

func TestLocal_PunctuationOnly(t *testing.T) {
	local := NewLocal(64)

	vectors, err := local.Embed(context.Background(), []string{"???"})
	require.NoError(t, err)
	assert.Len(t, vectors[0], 64)
}

func TestLocal_DefaultDimension(t *testing.T) {
	assert.Equal(t, 384, NewLocal(0).Dimension())
}

func TestLocal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocal(32).Embed(ctx, []string{"hello"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrigrams(t *testing.T) {
	assert.Equal(t, []string{"^ab", "ab$"}, trigrams("ab"))
	assert.Equal(t, []string{"^a$"}, trigrams("a"))
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
