package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/reporanger-dashboard/internal/dashboard"
	"github.com/naka-gawa/reporanger-dashboard/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analytics dashboard over HTTP",
	Long: `Serves the dashboard and the "how it works" page. Issues are fetched once
at startup, then again every refresh interval if one is configured, or on
POST /api/refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
		}

		aggregator, err := newAggregator(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		dashboardService := service.NewDashboardService(aggregator, service.Target{
			Owner: cfg.Owner,
			Repo:  cfg.Repo,
			Limit: cfg.PerPage,
		}, logger)

		handler := dashboard.NewHandler(dashboard.NewHTMLRenderer(cfg.WebhookPath), logger, dashboardService)
		mux := http.NewServeMux()
		handler.RegisterRoutes(mux)
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Starting RepoRanger Analytics for %s on http://localhost%s\n", cfg.Repository(), server.Addr)
		if !cfg.HasToken() {
			logger.Println("No GITHUB_TOKEN set, using unauthenticated (rate-limited) access")
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			return dashboardService.Run(egCtx, cfg.RefreshInterval)
		})
		eg.Go(func() error {
			<-egCtx.Done()
			logger.Println("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		return eg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
}
