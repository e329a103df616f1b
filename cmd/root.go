// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/reporanger-dashboard/internal/config"
	"github.com/naka-gawa/reporanger-dashboard/internal/gateway"
	"github.com/naka-gawa/reporanger-dashboard/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "reporanger",
	Short: "Analytics dashboard for the RepoRanger issue triage agent.",
	Long: `reporanger serves the RepoRanger analytics dashboard. It fetches the
issues of a GitHub repository, counts them by triage label and shows
the results alongside the latest weekly intelligence reports.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}

// newLogger discards everything unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// loadConfig reads the file named by --config, if any, and the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newAggregator wires the GitHub gateway into the aggregation use case.
func newAggregator(cfg *config.Config, logger *log.Logger) (*usecase.Aggregator, error) {
	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		BaseURL: cfg.GitHubURL,
		Token:   cfg.GitHubToken,
		API:     cfg.API,
	}, logger)
	if err != nil {
		return nil, err
	}
	return usecase.NewAggregator(githubGateway, logger), nil
}
