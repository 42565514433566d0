package modelcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

func testSpec(t *testing.T) ModelSpec {
	t.Helper()
	spec := ModelSpec{
		Name:      "test-mini-" + t.Name(),
		RepoID:    "testorg/test-mini",
		Revision:  "main",
		Dimension: 3,
		Artifacts: []Artifact{
			{Name: "config.json", Remote: "config.json"},
			{Name: "model.onnx", Remote: "onnx/model.onnx"},
		},
	}
	RegisterSpec(spec)
	return spec
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/testorg/test-mini/resolve/main/config.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hidden_size":3}`))
	})
	mux.HandleFunc("/testorg/test-mini/resolve/main/onnx/model.onnx", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("onnx-bytes"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testCacheConfig(t *testing.T, spec ModelSpec) CacheConfig {
	t.Helper()
	base := t.TempDir()
	return CacheConfig{
		TransformersCacheDir:     filepath.Join(base, "transformers"),
		SentenceTransformersHome: filepath.Join(base, "sentence_transformers"),
		ModelName:                spec.Name,
	}
}

func TestEnsureCacheDirectories_Idempotent(t *testing.T) {
	spec := testSpec(t)
	cfg := testCacheConfig(t, spec)
	b, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, b.EnsureCacheDirectories())
	require.NoError(t, b.EnsureCacheDirectories())
	require.DirExists(t, cfg.TransformersCacheDir)
	require.DirExists(t, cfg.SentenceTransformersHome)
}

func TestApplyEnvironment_SetsBothVars(t *testing.T) {
	spec := testSpec(t)
	cfg := testCacheConfig(t, spec)
	t.Setenv(EnvTransformersCache, "")
	t.Setenv(EnvSentenceTransformersHome, "")

	b, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, b.ApplyEnvironment())
	require.Equal(t, cfg.TransformersCacheDir, os.Getenv(EnvTransformersCache))
	require.Equal(t, cfg.SentenceTransformersHome, os.Getenv(EnvSentenceTransformersHome))
}

func TestPrefetch_DownloadsAndIsOfflineAfterwards(t *testing.T) {
	spec := testSpec(t)
	server := testServer(t)
	cfg := testCacheConfig(t, spec)

	b, err := New(cfg, WithEndpoint(server.URL), WithDownloadAttempts(1))
	require.NoError(t, err)

	first, err := b.Prefetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, spec.Name, first.Name())
	require.Equal(t, 3, first.Dimension())
	require.FileExists(t, filepath.Join(first.Dir(), "model.onnx"))
	require.FileExists(t, filepath.Join(first.Dir(), "manifest.json"))

	// Second call must not touch the network at all.
	server.Close()
	second, err := b.Prefetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.Dir(), second.Dir())
	require.NoError(t, second.Verify())
}

func TestPrefetch_NoCacheNoNetwork_FailsWithDownloadError(t *testing.T) {
	spec := testSpec(t)
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	cfg := testCacheConfig(t, spec)

	b, err := New(cfg, WithEndpoint(server.URL), WithDownloadAttempts(1))
	require.NoError(t, err)

	_, err = b.Prefetch(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, appErr.ErrDownload)
}

func TestPrefetch_RedownloadsCorruptedArtifact(t *testing.T) {
	spec := testSpec(t)
	server := testServer(t)
	cfg := testCacheConfig(t, spec)

	b, err := New(cfg, WithEndpoint(server.URL), WithDownloadAttempts(1))
	require.NoError(t, err)

	cached, err := b.Prefetch(context.Background())
	require.NoError(t, err)

	corrupted := filepath.Join(cached.Dir(), "model.onnx")
	require.NoError(t, os.WriteFile(corrupted, []byte("garbage"), 0o644))
	require.Error(t, cached.Verify())
	require.ErrorIs(t, cached.Verify(), appErr.ErrCacheCorrupted)

	healed, err := b.Prefetch(context.Background())
	require.NoError(t, err)
	require.NoError(t, healed.Verify())
	data, err := os.ReadFile(corrupted)
	require.NoError(t, err)
	require.Equal(t, "onnx-bytes", string(data))
}

func TestPrefetch_PinnedDigestMismatchFails(t *testing.T) {
	spec := testSpec(t)
	spec.Name = spec.Name + "-pinned"
	spec.Artifacts = []Artifact{
		{Name: "config.json", Remote: "config.json", SHA256: "0000000000000000000000000000000000000000000000000000000000000000"},
	}
	RegisterSpec(spec)
	server := testServer(t)
	cfg := testCacheConfig(t, spec)

	b, err := New(cfg, WithEndpoint(server.URL), WithDownloadAttempts(1))
	require.NoError(t, err)

	_, err = b.Prefetch(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, appErr.ErrDownload)
}

func TestNew_UnknownModel(t *testing.T) {
	_, err := New(CacheConfig{ModelName: "no-such-model"})
	require.Error(t, err)
}
