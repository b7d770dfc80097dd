package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	"corpusgen.dev/pkg/corpusgen/internal/domain"
	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

var runParallelFlag int
var runShardFlag string
var runCommandFlag string
var runTimeoutFlag int64

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every planned case through the case runner",
		Long: `Run each planned case with the configured command. The placeholders
{path} and {target} are replaced by the case file and the plan target, e.g.

  corpusgen run --command "./gradlew box --file {path} --backend {target}"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shardIndex, totalShards := parseShardFlag(runShardFlag)

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Plan: planPathFromConfig(),
				RunOptions: domain.RunOptions{
					Parallel:    uint(max(viper.GetInt(runParallelKey), 0)),
					ShardIndex:  uint(shardIndex),
					TotalShards: uint(totalShards),
				},
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, parallelFlagName, "p", viper.GetInt(runParallelKey), "number of cases run concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), runParallelKey)
	cmd.Flags().StringVarP(&runCommandFlag, commandFlagName, "c", viper.GetString(runCommandKey), "command run for every case")
	bindFlagToConfig(cmd.Flags().Lookup(commandFlagName), runCommandKey)
	cmd.Flags().Int64Var(&runTimeoutFlag, timeoutFlagName, viper.GetInt64(runTimeoutKey), "per-case timeout in seconds")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), runTimeoutKey)
	cmd.Flags().StringVarP(&runShardFlag, "shard", "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}

// configuredCaseRunner resolves the runner command and timeout when a case
// runs, after flags and configuration have been merged.
type configuredCaseRunner struct{}

func (configuredCaseRunner) RunCase(ctx context.Context, path m.Path, target m.TargetClass) m.CaseResult {
	timeout := time.Duration(viper.GetInt64(runTimeoutKey)) * time.Second

	return adapter.NewCommandCaseRunner(viper.GetString(runCommandKey), "", timeout).RunCase(ctx, path, target)
}
