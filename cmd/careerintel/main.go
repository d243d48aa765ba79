package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "careerintel",
		Short: "Collect, classify and study real interview questions",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(ingestCmd())
	root.AddCommand(collectCmd())
	root.AddCommand(topicsCmd())
	root.AddCommand(trendingCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(planCmd())
	root.AddCommand(salaryCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func ingestCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ingest <batch.json>",
		Short: "Ingest a JSON batch of scraped questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func collectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Pull configured feeds and ingest new questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect()
		},
	}
}

func topicsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Show the merged knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopics(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func trendingCmd() *cobra.Command {
	var (
		jsonOutput bool
		days       int
	)

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show trending interview topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrending(jsonOutput, days)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&days, "days", 30, "trending window in days")
	return cmd
}

func statsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func planCmd() *cobra.Command {
	var (
		days  int
		level string
		focus []string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a study plan from the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(days, level, focus)
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "plan length in days")
	cmd.Flags().StringVar(&level, "level", "mid", "target level (junior, mid, senior)")
	cmd.Flags().StringSliceVar(&focus, "focus", nil, "topic ids to prioritize")
	return cmd
}

func salaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Import and inspect salary reports",
	}

	cmd.AddCommand(salaryImportCmd())
	cmd.AddCommand(salaryStatsCmd())
	return cmd
}

func salaryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV salary export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSalaryImport(args[0])
		},
	}
}

func salaryStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-role salary aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSalaryStats(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
