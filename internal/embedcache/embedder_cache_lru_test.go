package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls  int
	values []float32
}

func (e *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	e.calls++
	return e.values, nil
}

func (e *countingEmbedder) ModelName() string {
	return "counting-model"
}

func TestLruEmbedder_CachesByContent(t *testing.T) {
	inner := &countingEmbedder{values: []float32{0.1, 0.2}}
	embedder := WrapLruCacheToEmbedder(inner, 8, time.Minute)

	first, err := embedder.Embed(context.Background(), "same text", "QUERY")
	require.NoError(t, err)
	second, err := embedder.Embed(context.Background(), "same text", "QUERY")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)

	_, err = embedder.Embed(context.Background(), "other text", "QUERY")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)

	// Same text under a different task type is a different key.
	_, err = embedder.Embed(context.Background(), "same text", "DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 3, inner.calls)
}

func TestWrapLruCacheToEmbedder_DisabledPassthrough(t *testing.T) {
	inner := &countingEmbedder{values: []float32{1}}
	require.Equal(t, inner, WrapLruCacheToEmbedder(inner, 0, time.Minute))
	require.Equal(t, inner, WrapLruCacheToEmbedder(inner, 8, 0))
}

func TestCloneEmbedding_Isolation(t *testing.T) {
	original := []float32{1, 2, 3}
	clone := cloneEmbedding(original)
	clone[0] = 99
	require.Equal(t, float32(1), original[0])
	require.Nil(t, cloneEmbedding(nil))
}
