package modelcache

import (
	"fmt"
	"path/filepath"

	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

// CachedModel is an opaque handle to a model snapshot on local disk. It
// is re-obtained from the cache on every process start; the artifact
// contents themselves are managed by the embedding runtime.
type CachedModel struct {
	name     string
	revision string
	dir      string
	dim      int
	files    map[string]string
}

func newCachedModel(spec ModelSpec, dir string, files map[string]string) *CachedModel {
	copied := make(map[string]string, len(files))
	for name, digest := range files {
		copied[name] = digest
	}
	return &CachedModel{
		name:     spec.Name,
		revision: spec.Revision,
		dir:      dir,
		dim:      spec.Dimension,
		files:    copied,
	}
}

func (m *CachedModel) Name() string {
	return m.name
}

func (m *CachedModel) Revision() string {
	return m.revision
}

// Dir is the directory holding the model artifacts.
func (m *CachedModel) Dir() string {
	return m.dir
}

// Dimension is the size of the vectors this model produces.
func (m *CachedModel) Dimension() int {
	return m.dim
}

// Verify re-hashes every cached artifact against the recorded digests.
// It reports corruption, it does not repair it; the next Prefetch
// re-downloads whatever Verify flagged.
func (m *CachedModel) Verify() error {
	for name, want := range m.files {
		got, err := hashFile(filepath.Join(m.dir, name))
		if err != nil {
			return fmt.Errorf("%s: %v: %w", name, err, appErr.ErrCacheCorrupted)
		}
		if got != want {
			return fmt.Errorf("%s: digest mismatch: %w", name, appErr.ErrCacheCorrupted)
		}
	}
	return nil
}
