package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stokaro/orauser/cmd/reconcile"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "orauser",
	Short: "Idempotent database user/schema reconciler",
	Long: `orauser converges a single database user/schema object to a declared
desired state: existence, credentials, tablespaces, profile, lock state and
grants. It is built as a one-shot configuration-management primitive: rerun
it as often as you like, it only reports changed=true when it had to act.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(reconcile.NewReconcileCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
