package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pthm/hxblog/internal/config"
	"github.com/pthm/hxblog/internal/logger"
	"github.com/pthm/hxblog/internal/server"
	"github.com/pthm/hxblog/lib/cms"
	"github.com/pthm/hxblog/lib/graphql"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve blog pages and island requests",
	Long: `Serve the blog over HTTP.

Content is read from CONTENT_FILE. Island requests are answered under /_c/,
metrics under /metrics and health checks under /healthz.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Server()
	if err != nil {
		return err
	}

	log := logger.New("hxblog", cfg.LogLevel)
	slog.SetDefault(log)

	repo, err := cms.LoadFile(cfg.ContentFile)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	log.Info("content loaded",
		slog.String("file", cfg.ContentFile),
		slog.Int("nodes", repo.Len()),
	)

	client := newClient(cfg, graphql.WithLogger(log))
	defer client.Close()

	srv, err := server.New(cfg, repo, client, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
