package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/build"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/config"
	"github.com/edify-labs/edify/internal/db"
	"github.com/edify-labs/edify/internal/handler"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/logging"
	"github.com/edify-labs/edify/internal/metrics"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/tools"
	"github.com/edify-labs/edify/internal/tools/toolset"
	"github.com/edify-labs/edify/internal/usage"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireOIDC(); err != nil {
				return err
			}
			if err := cfg.ValidateLLM(); err != nil {
				return err
			}

			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			log.Info("starting", zap.String("build", build.String()))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			database, err := db.New(ctx, cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(ctx, database, cfg.DB.Driver); err != nil {
				return err
			}

			cat, err := catalog.Load()
			if err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			orgStore := store.NewOrganizationStore(database)
			toolStore := store.NewToolStore(database)
			generations := store.NewGenerationStore(database)
			tokenStore := auth.NewSQLTokenStore(database)

			if err := cat.Sync(ctx, toolStore); err != nil {
				return err
			}
			if n, err := userStore.Count(ctx); err == nil {
				metrics.UsersTotal.Set(float64(n))
			}

			provider, err := llm.New(ctx, llm.ConfigFrom(cfg), log)
			if err != nil {
				return err
			}
			client := ai.NewClient(provider, ai.Options{
				Temperature:  cfg.LLM.Temperature,
				MaxTokens:    cfg.LLM.MaxTokens,
				Timeout:      cfg.LLM.Timeout,
				NativeSchema: cfg.LLM.NativeSchema,
			}, log)

			writer := usage.NewWriter(generations, usage.DefaultBuffer, log)
			runner := tools.NewRunner(client, toolset.Default(), writer, log)

			oidcProvider, err := auth.NewProvider(ctx, cfg)
			if err != nil {
				return err
			}
			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)
			authHandlers := auth.NewHandlers(oidcProvider, sessionManager, userStore, cfg.AdminEmail, !cfg.InsecureCookies, log)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore, toolStore, log)

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthHandlers:   authHandlers,
				AuthMiddleware: authMiddleware,
				Runner:         runner,
				Catalog:        cat,
				UserStore:      userStore,
				OrgStore:       orgStore,
				ToolStore:      toolStore,
				Generations:    generations,
				TokenStore:     tokenStore,
				DB:             database,
				MaxUploadBytes: cfg.Upload.MaxBytes,
				Log:            log,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			writerCtx, stopWriter := context.WithCancel(context.Background())
			defer stopWriter()

			g.Go(func() error {
				return writer.Run(writerCtx)
			})
			g.Go(func() error {
				log.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("llm_provider", cfg.LLM.Provider))
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				err := srv.Shutdown(shutdownCtx)
				// Generations recorded by the last requests drain before Run returns.
				stopWriter()
				return err
			})
			return g.Wait()
		},
	}
}
