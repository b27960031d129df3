package main

import (
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	cmdcalculate "pr-dashboard/command/calculate"
	cmdweb "pr-dashboard/command/web"
)

// Pull-request metrics dashboard.
// Usage:
//   pr-dashboard web [-addr :8080] [-data data/pr_data.csv] [-quoted]
//   pr-dashboard calculate [-data data/pr_data.csv] [-out data] [-start 2024-01-01 -end 2024-01-31 | -all]
// ENV: CONFIG_PATH points to a YAML config file (default ./config.yml); PRDASH_* variables override it.

func main() {
	// Text to stderr until a command has read its config.
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	root := &cobra.Command{
		Use:          "pr-dashboard",
		Short:        "Pull-request metrics dashboard",
		SilenceUsage: true,
	}
	root.AddCommand(
		passthrough("web", "Serve the dashboard over HTTP", cmdweb.Run),
		passthrough("calculate", "Compute the dashboard views once and write them as CSV", cmdcalculate.Run),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// passthrough hands the raw arguments to a command that parses its own flags.
func passthrough(use, short string, run func([]string) error) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	}
}
