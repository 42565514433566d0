package modelcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupSpec_BuiltinModel(t *testing.T) {
	spec, ok := LookupSpec("all-MiniLM-L6-v2")
	require.True(t, ok)
	require.Equal(t, 384, spec.Dimension)
	require.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", spec.RepoID)

	// Lookup is case-insensitive.
	_, ok = LookupSpec("ALL-MINILM-L6-V2")
	require.True(t, ok)
}

func TestArtifactURL(t *testing.T) {
	spec, ok := LookupSpec("all-MiniLM-L6-v2")
	require.True(t, ok)
	url := spec.ArtifactURL("", Artifact{Remote: "onnx/model.onnx"})
	require.Equal(t, "https://huggingface.co/sentence-transformers/all-MiniLM-L6-v2/resolve/main/onnx/model.onnx", url)

	url = spec.ArtifactURL("https://mirror.example.com/", Artifact{Remote: "config.json"})
	require.Equal(t, "https://mirror.example.com/sentence-transformers/all-MiniLM-L6-v2/resolve/main/config.json", url)
}

func TestCacheConfigDefaults(t *testing.T) {
	cfg := CacheConfig{}.withDefaults()
	require.Equal(t, DefaultTransformersCacheDir, cfg.TransformersCacheDir)
	require.Equal(t, DefaultSentenceTransformersHome, cfg.SentenceTransformersHome)
	require.Equal(t, DefaultModelName, cfg.ModelName)
}
