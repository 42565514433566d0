package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/homeolab/homeoagent/internal/ai"
	"github.com/homeolab/homeoagent/internal/config"
	"github.com/homeolab/homeoagent/internal/embedcache"
	"github.com/homeolab/homeoagent/internal/handler"
	"github.com/homeolab/homeoagent/internal/job"
	"github.com/homeolab/homeoagent/internal/middleware"
	"github.com/homeolab/homeoagent/internal/modelcache"
	"github.com/homeolab/homeoagent/internal/repo"
	"github.com/homeolab/homeoagent/internal/schedule"
	"github.com/homeolab/homeoagent/internal/service"
	"github.com/homeolab/homeoagent/internal/setup"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "homeoagent",
		Short: "homeopathic intake agent backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (defaults apply when omitted)")

	downloadCmd := &cobra.Command{
		Use:   "download-models",
		Short: "prefetch the embedding model into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runDownload(cmd.Context(), cfg)
		},
	}

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "prepare the agent workspace directories and check env vars",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			report, err := setup.Run(cmd.Context(), cfg.Workspace)
			if err != nil {
				return err
			}
			for _, name := range report.MissingEnv {
				fmt.Printf("missing env var: %s (remote providers stay disabled without it)\n", name)
			}
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the agent server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(downloadCmd, setupCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	if configPath != "" {
		logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	}
	return cfg, nil
}

func newBootstrapper(cfg *config.Config) (*modelcache.Bootstrapper, error) {
	return modelcache.New(modelcache.CacheConfig{
		TransformersCacheDir:     cfg.ModelCache.TransformersCacheDir,
		SentenceTransformersHome: cfg.ModelCache.SentenceTransformersHome,
		ModelName:                cfg.ModelCache.ModelName,
	},
		modelcache.WithEndpoint(cfg.ModelCache.Endpoint),
		modelcache.WithDownloadAttempts(cfg.ModelCache.DownloadAttempts),
	)
}

// runDownload is the explicit prefetch entry point: after it succeeds
// the server runs without network access to the model host.
func runDownload(ctx context.Context, cfg *config.Config) error {
	log := logutil.GetLogger(ctx)
	bootstrapper, err := newBootstrapper(cfg)
	if err != nil {
		return err
	}
	if err := bootstrapper.EnsureCacheDirectories(); err != nil {
		return err
	}
	if err := bootstrapper.ApplyEnvironment(); err != nil {
		return err
	}
	cached, err := bootstrapper.Prefetch(ctx)
	if err != nil {
		return err
	}
	log.Info("model cached",
		zap.String("model", cached.Name()),
		zap.String("dir", cached.Dir()),
	)

	// Smoke-test the cached model the way the runtime will use it.
	provider, err := ai.NewProvider("local", map[string]interface{}{"model_dir": cached.Dir()})
	if err != nil {
		return err
	}
	embedder := ai.NewEmbedder(provider, cached.Name())
	values, err := embedder.Embed(ctx, "This is a test sentence", "")
	if err != nil {
		return fmt.Errorf("smoke embedding failed: %w", err)
	}
	if cached.Dimension() > 0 && len(values) != cached.Dimension() {
		return fmt.Errorf("embedding dimension %d, expected %d", len(values), cached.Dimension())
	}
	log.Info("model verified", zap.Int("dimension", len(values)))
	return nil
}

func buildEmbedder(ctx context.Context, cfg *config.Config, db *sql.DB) (ai.IEmbedder, *modelcache.CachedModel, error) {
	var cached *modelcache.CachedModel
	var providerArgs interface{} = cfg.Embedding.Data
	if cfg.Embedding.Provider == "local" {
		bootstrapper, err := newBootstrapper(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := bootstrapper.ApplyEnvironment(); err != nil {
			return nil, nil, err
		}
		cached, err = bootstrapper.Prefetch(ctx)
		if err != nil {
			return nil, nil, err
		}
		providerArgs = map[string]interface{}{"model_dir": cached.Dir()}
	}
	provider, err := ai.NewProvider(cfg.Embedding.Provider, providerArgs)
	if err != nil {
		return nil, nil, err
	}
	embedder := ai.NewEmbedder(provider, cfg.Embedding.Model)
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, repo.NewEmbeddingCacheRepo(db))
	embedder = embedcache.WrapLruCacheToEmbedder(
		embedder,
		cfg.EmbedCache.LRUSize,
		time.Duration(cfg.EmbedCache.LRUTTLMinutes)*time.Minute,
	)
	return embedder, cached, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log := logutil.GetLogger(ctx)
	log.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("model", cfg.ModelCache.ModelName),
	)

	db, err := repo.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := repo.ApplyMigrations(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	embedder, cached, err := buildEmbedder(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	var generator ai.IGenerator
	if cfg.Generator.Provider != "" {
		genProvider, err := ai.NewProvider(cfg.Generator.Provider, cfg.Generator.Data)
		if err != nil {
			return fmt.Errorf("init generator provider: %w", err)
		}
		generator = ai.NewGenerator(genProvider, cfg.Generator.Model)
	}

	manager := ai.NewManager(embedder, generator, ai.ManagerConfig{
		Embed: ai.OpLimits{
			Timeout:       cfg.Embedding.Timeout,
			MaxInputChars: cfg.Embedding.MaxInputChars,
		},
		Generate: ai.OpLimits{
			Timeout:       cfg.Generator.Timeout,
			MaxInputChars: cfg.Generator.MaxInputChars,
		},
	})

	intakeService := service.NewIntakeService(repo.NewIntakeRepo(db), manager)
	embedService := service.NewEmbedService(manager, cached, cfg.Embedding.Provider)

	scheduler := schedule.NewCronScheduler()
	cacheRepo := repo.NewEmbeddingCacheRepo(db)
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.EmbedCache.MaxAgeDays), cfg.EmbedCache.CleanupCron); err != nil {
		return err
	}
	if cached != nil {
		if err := scheduler.AddJob(job.NewModelCacheVerifyJob(cached), cfg.EmbedCache.VerifyCron); err != nil {
			return err
		}
	}

	deps := handler.RouterDeps{
		Intake: handler.NewIntakeHandler(intakeService),
		Embed:  handler.NewEmbedHandler(embedService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllow),
			middleware.RateLimit(time.Duration(cfg.RateLimit)*time.Second),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(runCtx)
	defer scheduler.Stop()

	log.Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(runCtx).Error("server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	log.Info("server stopping...")
	return nil
}
