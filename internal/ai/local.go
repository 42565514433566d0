package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// localConfig points the in-process embedding runtime at a model dir
// prepared by modelcache.Prefetch. The dir must contain model.onnx and
// the tokenizer files.
type localConfig struct {
	ModelDir string `json:"model_dir"`
}

// localProvider serves embeddings from the on-disk model snapshot, so it
// works with no network once the cache is populated. Generation is not
// something a sentence-embedding model can do.
type localProvider struct {
	modelDir string

	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
}

func init() {
	Register("local", createLocalProvider)
}

func createLocalProvider(args interface{}) (IProvider, error) {
	cfg := &localConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.ModelDir == "" {
		return nil, fmt.Errorf("local provider model_dir is required")
	}
	return &localProvider{modelDir: cfg.ModelDir}, nil
}

func (p *localProvider) Name() string {
	return "local"
}

func (p *localProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	return "", ErrUnavailable
}

func (p *localProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	_ = taskType // the local model has no task-type conditioning
	pipeline, err := p.load(model)
	if err != nil {
		return nil, err
	}
	result, err := pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("run embedding pipeline: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding values returned")
	}
	return result.Embeddings[0], nil
}

// load lazily initializes the runtime on first use. The session stays
// alive for the process lifetime, matching the one-time bootstrap model.
func (p *localProvider) load(model string) (*pipelines.FeatureExtractionPipeline, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pipeline != nil {
		return p.pipeline, nil
	}
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("init embedding runtime: %w", err)
	}
	config := hugot.FeatureExtractionConfig{
		ModelPath:    p.modelDir,
		OnnxFilename: "model.onnx",
		Name:         "embedder-" + strings.TrimSpace(model),
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("load model from %s: %w", p.modelDir, err)
	}
	p.session = session
	p.pipeline = pipeline
	return pipeline, nil
}

// Close releases the runtime. Safe to call when Embed was never used.
func (p *localProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	err := p.session.Destroy()
	p.session = nil
	p.pipeline = nil
	return err
}
