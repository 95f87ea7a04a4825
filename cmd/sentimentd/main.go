package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reelsense/sentiment-api/internal/config"
	"github.com/reelsense/sentiment-api/internal/logging"
	"github.com/reelsense/sentiment-api/internal/mlclient"
	"github.com/reelsense/sentiment-api/internal/server"
	"github.com/reelsense/sentiment-api/internal/store"
)

const startupPingTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("failed to execute command: %q", err)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{Use: "sentimentd"}
	rootCmd.PersistentFlags().String("config", os.Getenv("SENTIMENT_CONFIG"), "Path to YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sentiment API server",
		Run:   runServe,
	}
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")

	rootCmd.AddCommand(serveCmd, newCheckDBCmd(), newTokenCmd(), newConfigCmd())
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func runServe(cmd *cobra.Command, args []string) {
	logging.Init()
	defer zap.S().Sync() //nolint:errcheck

	logger := zap.S()

	cfg, err := loadConfig(cmd)
	if err != nil {
		logger.Fatal(err)
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.ListenAddr = listen
	}

	ctx, stopFunc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopFunc()

	st, err := store.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal(err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Errorw("failed to close mongo client", "error", err)
		}
	}()

	// The server starts regardless of database health; /api/test reports the
	// live status either way.
	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	if err := st.Ping(pingCtx); err != nil {
		logger.Warnw("database connection issue", "uri", cfg.MongoURI, "error", err)
	} else {
		stats := st.Stats(pingCtx)
		logger.Infow("database connected",
			"documents", stats.TotalDocuments, "movies", stats.UniqueMovies)
	}
	cancel()

	ml := mlclient.New(cfg.MLServiceURL)
	app := server.NewApp(cfg, st, ml)
	srv := server.New(cfg.ListenAddr, app.Routes())

	logger.Infow("starting sentiment api",
		"listen", cfg.ListenAddr,
		"ml_service_url", cfg.MLServiceURL,
		"upload_folder", cfg.UploadDir,
		"max_file_size_mb", cfg.MaxUploadMB(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal(err)
	}
}
