package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/homeolab/homeoagent/internal/config"
	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

// Env vars the optional remote providers read. Missing ones are
// reported, never fatal: the local embedding path needs none of them.
var optionalEnvVars = []string{
	"GEMINI_API_KEY",
	"GOOGLE_API_KEY",
	"GOOGLE_SEARCH_ENGINE_ID",
}

type Report struct {
	CreatedDirs []string
	MissingEnv  []string
}

// Run prepares the agent workspace: knowledge base, vector DB and log
// directories. Idempotent, directory creation is a no-op when they
// already exist.
func Run(ctx context.Context, cfg config.WorkspaceConfig) (*Report, error) {
	report := &Report{}
	dirs := []string{cfg.KnowledgePDFDir, cfg.VectorDBDir, cfg.LogsDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %v: %w", dir, err, appErr.ErrDirectoryCreate)
		}
		report.CreatedDirs = append(report.CreatedDirs, dir)
		logutil.GetLogger(ctx).Info("workspace directory ready", zap.String("dir", dir))
	}
	for _, name := range optionalEnvVars {
		if os.Getenv(name) == "" {
			report.MissingEnv = append(report.MissingEnv, name)
		}
	}
	return report, nil
}
