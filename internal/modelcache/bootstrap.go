package modelcache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

const manifestFile = "manifest.json"

// Bootstrapper makes model loading idempotent and offline-capable after
// the first run: it prepares the cache directories, exports the
// environment contract, and prefetches the model artifacts.
type Bootstrapper struct {
	cfg      CacheConfig
	spec     ModelSpec
	client   *http.Client
	endpoint string
	attempts uint64
}

type Option func(*Bootstrapper)

func WithHTTPClient(client *http.Client) Option {
	return func(b *Bootstrapper) {
		if client != nil {
			b.client = client
		}
	}
}

func WithEndpoint(endpoint string) Option {
	return func(b *Bootstrapper) {
		if endpoint != "" {
			b.endpoint = endpoint
		}
	}
}

func WithDownloadAttempts(attempts int) Option {
	return func(b *Bootstrapper) {
		if attempts > 0 {
			b.attempts = uint64(attempts)
		}
	}
}

func New(cfg CacheConfig, opts ...Option) (*Bootstrapper, error) {
	cfg = cfg.withDefaults()
	spec, ok := LookupSpec(cfg.ModelName)
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", cfg.ModelName)
	}
	b := &Bootstrapper{
		cfg:      cfg,
		spec:     spec,
		client:   &http.Client{Timeout: 10 * time.Minute},
		endpoint: defaultEndpoint,
		attempts: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Bootstrapper) Config() CacheConfig {
	return b.cfg
}

func (b *Bootstrapper) Spec() ModelSpec {
	return b.spec
}

// EnsureCacheDirectories creates both cache directories. Calling it again
// when they already exist is a no-op.
func (b *Bootstrapper) EnsureCacheDirectories() error {
	for _, dir := range []string{b.cfg.TransformersCacheDir, b.cfg.SentenceTransformersHome} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %v (check disk space and permissions): %w", dir, err, appErr.ErrDirectoryCreate)
		}
	}
	return nil
}

// ApplyEnvironment exports the two cache paths through the documented
// environment contract. Must run before anything loads the model.
func (b *Bootstrapper) ApplyEnvironment() error {
	if err := os.Setenv(EnvTransformersCache, b.cfg.TransformersCacheDir); err != nil {
		return err
	}
	return os.Setenv(EnvSentenceTransformersHome, b.cfg.SentenceTransformersHome)
}

// Prefetch returns a handle to the locally cached model, downloading any
// missing or corrupted artifacts first. With a complete cache it touches
// the network not at all, so repeated calls succeed offline.
func (b *Bootstrapper) Prefetch(ctx context.Context) (*CachedModel, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("model", b.spec.Name))
	if err := b.EnsureCacheDirectories(); err != nil {
		return nil, err
	}
	modelDir := b.cfg.ModelDir()
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %v: %w", modelDir, err, appErr.ErrDirectoryCreate)
	}

	man := readManifest(modelDir)
	stale := b.staleArtifacts(modelDir, man)
	if len(stale) == 0 {
		logger.Debug("model cache complete, skipping download")
		return newCachedModel(b.spec, modelDir, man.Files), nil
	}

	for _, artifact := range stale {
		url := b.spec.ArtifactURL(b.endpoint, artifact)
		dest := filepath.Join(modelDir, artifact.Name)
		logger.Info("downloading model artifact",
			zap.String("artifact", artifact.Name),
			zap.String("url", url),
		)
		digest, err := b.fetchArtifact(ctx, url, dest, artifact.SHA256)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %v (check network connectivity, or clear the cache and retry): %w",
				artifact.Name, err, appErr.ErrDownload)
		}
		man.Files[artifact.Name] = digest
	}

	man.Model = b.spec.Name
	man.Revision = b.spec.Revision
	man.Ctime = time.Now().Unix()
	if err := writeManifest(modelDir, man); err != nil {
		return nil, err
	}
	logger.Info("model cached", zap.String("dir", modelDir), zap.Int("artifacts", len(b.spec.Artifacts)))
	return newCachedModel(b.spec, modelDir, man.Files), nil
}

// staleArtifacts lists the artifacts that must be (re)downloaded: files
// that are missing, or whose on-disk digest no longer matches the pin or
// the recorded manifest. A corrupted partial download therefore heals on
// the next Prefetch.
func (b *Bootstrapper) staleArtifacts(modelDir string, man *manifest) []Artifact {
	var stale []Artifact
	for _, artifact := range b.spec.Artifacts {
		path := filepath.Join(modelDir, artifact.Name)
		digest, err := hashFile(path)
		if err != nil {
			stale = append(stale, artifact)
			continue
		}
		want := artifact.SHA256
		if want == "" {
			want = man.Files[artifact.Name]
		}
		if want == "" || digest != want {
			stale = append(stale, artifact)
			continue
		}
		man.Files[artifact.Name] = digest
	}
	return stale
}

type manifest struct {
	Model    string            `json:"model"`
	Revision string            `json:"revision"`
	Files    map[string]string `json:"files"`
	Ctime    int64             `json:"ctime"`
}

func readManifest(modelDir string) *manifest {
	man := &manifest{Files: map[string]string{}}
	data, err := os.ReadFile(filepath.Join(modelDir, manifestFile))
	if err != nil {
		return man
	}
	if err := json.Unmarshal(data, man); err != nil || man.Files == nil {
		// Unreadable manifest is treated the same as no manifest.
		return &manifest{Files: map[string]string{}}
	}
	return man
}

func writeManifest(modelDir string, man *manifest) error {
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(modelDir, manifestFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(modelDir, manifestFile))
}
