package cmd

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"corpusgen.dev/pkg/corpusgen/internal/domain"
)

var watchDebounceFlag int64
var watchDiffFlag bool

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check the plan whenever the corpus changes",
		Long: `Check the plan once, then watch the corpus root and check again after
every burst of file system changes until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return workflow.Watch(ctx, domain.WatchArgs{
				Plan:     planPathFromConfig(),
				Parallel: viper.GetInt(checkParallelKey),
				ShowDiff: watchDiffFlag,
				Debounce: time.Duration(viper.GetInt64(watchDebounceKey)) * time.Millisecond,
			})
		},
	}

	configureWatchFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func configureWatchFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&watchDebounceFlag, debounceFlagName, viper.GetInt64(watchDebounceKey), "milliseconds to wait for changes to settle")
	bindFlagToConfig(cmd.Flags().Lookup(debounceFlagName), watchDebounceKey)
	cmd.Flags().BoolVarP(&watchDiffFlag, "diff", "d", false, "print a unified diff for every drifted directory")
}
