package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Fetches issues once and outputs the dashboard as JSON",
	Long:  `Fetches the issues of the configured repository once, aggregates them by label, and outputs the stats, recent issues and reports in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if owner, _ := cmd.Flags().GetString("owner"); owner != "" {
			cfg.Owner = owner
		}
		if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
			cfg.Repo = repo
		}
		if cmd.Flags().Changed("per-page") {
			cfg.PerPage, _ = cmd.Flags().GetInt("per-page")
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		aggregator, err := newAggregator(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		dashboard, err := aggregator.Aggregate(ctx, cfg.Owner, cfg.Repo, cfg.PerPage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate stats: %v\n", err)
			os.Exit(1)
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(dashboard, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("owner", "o", "", "Repository owner (overrides config)")
	statsCmd.Flags().StringP("repo", "r", "", "Repository name (overrides config)")
	statsCmd.Flags().Int("per-page", 0, "Number of issues to fetch, 1-100 (overrides config)")
}
