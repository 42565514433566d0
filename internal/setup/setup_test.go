package setup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homeolab/homeoagent/internal/config"
)

func TestRun_CreatesDirsIdempotently(t *testing.T) {
	base := t.TempDir()
	cfg := config.WorkspaceConfig{
		KnowledgePDFDir: filepath.Join(base, "knowledge_base/pdfs"),
		VectorDBDir:     filepath.Join(base, "vector_db"),
		LogsDir:         filepath.Join(base, "logs"),
	}

	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, report.CreatedDirs, 3)
	require.DirExists(t, cfg.KnowledgePDFDir)

	// Running again over existing dirs must not fail.
	_, err = Run(context.Background(), cfg)
	require.NoError(t, err)
}

func TestRun_ReportsMissingEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "set")
	t.Setenv("GOOGLE_SEARCH_ENGINE_ID", "")

	report, err := Run(context.Background(), config.WorkspaceConfig{})
	require.NoError(t, err)
	require.Contains(t, report.MissingEnv, "GEMINI_API_KEY")
	require.Contains(t, report.MissingEnv, "GOOGLE_SEARCH_ENGINE_ID")
	require.NotContains(t, report.MissingEnv, "GOOGLE_API_KEY")
}
