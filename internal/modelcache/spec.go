package modelcache

import (
	"path/filepath"
	"strings"
	"sync"
)

const (
	DefaultTransformersCacheDir     = "./models/transformers"
	DefaultSentenceTransformersHome = "./models/sentence_transformers"
	DefaultModelName                = "all-MiniLM-L6-v2"

	// Environment contract of the sentence-transformers tooling. The
	// runtime reads these at its own initialization, so they must be set
	// before any model load.
	EnvTransformersCache        = "TRANSFORMERS_CACHE"
	EnvSentenceTransformersHome = "SENTENCE_TRANSFORMERS_HOME"

	defaultEndpoint = "https://huggingface.co"
)

// CacheConfig is constructed once at process start and treated as
// immutable afterwards. The directories persist across runs.
type CacheConfig struct {
	TransformersCacheDir     string
	SentenceTransformersHome string
	ModelName                string
}

func (c CacheConfig) withDefaults() CacheConfig {
	if c.TransformersCacheDir == "" {
		c.TransformersCacheDir = DefaultTransformersCacheDir
	}
	if c.SentenceTransformersHome == "" {
		c.SentenceTransformersHome = DefaultSentenceTransformersHome
	}
	if c.ModelName == "" {
		c.ModelName = DefaultModelName
	}
	return c
}

// ModelDir is where the named model's artifacts live inside the cache.
func (c CacheConfig) ModelDir() string {
	return filepath.Join(c.SentenceTransformersHome, c.ModelName)
}

// Artifact is a single file of a model snapshot. Remote is the path
// inside the upstream repository; Name is the path inside the local model
// dir. SHA256 may pin the expected digest; when empty the digest observed
// on first download is recorded in the manifest and enforced afterwards.
type Artifact struct {
	Name   string
	Remote string
	SHA256 string
}

// ModelSpec describes where a named model's artifacts come from and what
// a complete local copy looks like.
type ModelSpec struct {
	Name      string
	RepoID    string
	Revision  string
	Dimension int
	Artifacts []Artifact
}

// ArtifactURL builds the upstream resolve URL for one artifact.
func (s ModelSpec) ArtifactURL(endpoint string, a Artifact) string {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	revision := s.Revision
	if revision == "" {
		revision = "main"
	}
	return strings.TrimSuffix(endpoint, "/") + "/" + s.RepoID + "/resolve/" + revision + "/" + a.Remote
}

var (
	registryMu sync.RWMutex
	registry   = map[string]ModelSpec{}
)

func RegisterSpec(spec ModelSpec) {
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return
	}
	registryMu.Lock()
	registry[key] = spec
	registryMu.Unlock()
}

func LookupSpec(name string) (ModelSpec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	spec, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return spec, ok
}

func init() {
	RegisterSpec(ModelSpec{
		Name:      "all-MiniLM-L6-v2",
		RepoID:    "sentence-transformers/all-MiniLM-L6-v2",
		Revision:  "main",
		Dimension: 384,
		Artifacts: []Artifact{
			{Name: "config.json", Remote: "config.json"},
			{Name: "tokenizer.json", Remote: "tokenizer.json"},
			{Name: "tokenizer_config.json", Remote: "tokenizer_config.json"},
			{Name: "special_tokens_map.json", Remote: "special_tokens_map.json"},
			{Name: "model.onnx", Remote: "onnx/model.onnx"},
		},
	})
}
