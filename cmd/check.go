package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"corpusgen.dev/pkg/corpusgen/internal/domain"
)

var checkParallelFlag int
var checkDiffFlag bool

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the corpus still matches the plan",
		Long: `Re-list every directory recorded in the plan and fail if any eligible
file was added, removed or renamed since the plan was generated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Check(cmd.Context(), domain.CheckArgs{
				Plan:     planPathFromConfig(),
				Parallel: viper.GetInt(checkParallelKey),
				ShowDiff: checkDiffFlag,
			})
		},
	}

	configureCheckFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func configureCheckFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&checkParallelFlag, parallelFlagName, "p", viper.GetInt(checkParallelKey), "number of directories checked concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), checkParallelKey)
	cmd.Flags().BoolVarP(&checkDiffFlag, "diff", "d", false, "print a unified diff for every drifted directory")
}
