package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schemarev/schemarev/internal/api"
	"github.com/schemarev/schemarev/internal/entity"
	"github.com/schemarev/schemarev/internal/library"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes reverse engineering and the pattern library over HTTP:

  POST /api/v1/reverse          reverse engineer a SQL payload
  GET  /api/v1/patterns/search  search stored construct profiles
  GET  /api/v1/patterns/similar embedding-ranked profile search
  GET  /api/v1/patterns/pairs   list stored vocabulary/instance pairs
  GET  /api/v1/metrics          per-parser success rates
  POST /api/v1/metrics/reset    reset parser metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	deps := &api.RouterDeps{}
	if cfg.Library.Enabled {
		repo, err := library.Connect(ctx, cfg.Library.DSN)
		if err != nil {
			log.Warnw("pattern library unavailable, search disabled", "error", err)
		} else {
			defer repo.Close()
			if err := repo.EnsureSchema(ctx, cfg.Library.EmbeddingDims); err != nil {
				log.Warnw("pattern library schema setup failed", "error", err)
			}

			var embed *library.EmbedClient
			if cfg.Library.EmbeddingEndpoint != "" {
				embed, err = library.NewEmbedClient(cfg.Library)
				if err != nil {
					log.Warnw("embedding client unavailable, semantic search disabled", "error", err)
				}
			}
			svc := library.NewService(repo, embed)

			deps.Pool = repo.Pool()
			deps.Patterns = svc
			if embed != nil {
				deps.Semantic = svc
			}
			log.Infow("connected to pattern library", "semantic", embed != nil)
		}
	}

	engine := entity.NewEngine(log.SugaredLogger, entity.Options{
		MinConfidence:     cfg.Engine.MinConfidence,
		MergeTranslations: cfg.Engine.MergeTranslations,
	})

	router := api.NewRouter(log.SugaredLogger, engine, deps)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown error", "error", err)
	}

	log.Infow("server stopped")
	return nil
}
