package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/homeolab/homeoagent/internal/ai"
	"github.com/homeolab/homeoagent/internal/modelcache"
	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

type EmbedService struct {
	manager  *ai.Manager
	cached   *modelcache.CachedModel
	provider string
}

// NewEmbedService wires the embedder chain with the local model handle.
// cached may be nil when a remote embedding provider is configured.
func NewEmbedService(manager *ai.Manager, cached *modelcache.CachedModel, provider string) *EmbedService {
	return &EmbedService{manager: manager, cached: cached, provider: provider}
}

func (s *EmbedService) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErr.ErrInvalid
	}
	values, err := s.manager.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	if want := s.expectedDimension(); want > 0 && len(values) != want {
		logutil.GetLogger(ctx).Error("unexpected embedding dimension",
			zap.Int("got", len(values)),
			zap.Int("want", want),
		)
		return nil, fmt.Errorf("embedding dimension %d, expected %d", len(values), want)
	}
	return values, nil
}

func (s *EmbedService) expectedDimension() int {
	if s.cached == nil {
		return 0
	}
	return s.cached.Dimension()
}

type AgentStatus struct {
	ModelName    string `json:"model_name"`
	ModelDir     string `json:"model_dir"`
	Cached       bool   `json:"cached"`
	CacheHealthy bool   `json:"cache_healthy"`
	Dimension    int    `json:"dimension"`
	Provider     string `json:"provider"`
}

func (s *EmbedService) Status(ctx context.Context) AgentStatus {
	status := AgentStatus{
		ModelName: s.manager.EmbeddingModelName(),
		Provider:  s.provider,
	}
	if s.cached != nil {
		status.Cached = true
		status.ModelDir = s.cached.Dir()
		status.Dimension = s.cached.Dimension()
		if err := s.cached.Verify(); err != nil {
			logutil.GetLogger(ctx).Warn("model cache verification failed", zap.Error(err))
		} else {
			status.CacheHealthy = true
		}
	}
	return status
}
