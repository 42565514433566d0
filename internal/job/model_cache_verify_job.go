package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/homeolab/homeoagent/internal/modelcache"
)

// ModelCacheVerifyJob re-hashes the cached model artifacts so cache
// corruption shows up in the logs before it shows up as bad embeddings.
// It never repairs; that stays an operator decision (re-run
// download-models, or clear the cache dir and retry).
type ModelCacheVerifyJob struct {
	cached *modelcache.CachedModel
}

func NewModelCacheVerifyJob(cached *modelcache.CachedModel) *ModelCacheVerifyJob {
	return &ModelCacheVerifyJob{cached: cached}
}

func (j *ModelCacheVerifyJob) Name() string {
	return "model_cache_verify"
}

func (j *ModelCacheVerifyJob) Run(ctx context.Context) error {
	if j.cached == nil {
		return nil
	}
	if err := j.cached.Verify(); err != nil {
		logutil.GetLogger(ctx).Error("model cache verification failed",
			zap.String("model", j.cached.Name()),
			zap.String("dir", j.cached.Dir()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
