package cmd

import (
	"github.com/spf13/cobra"

	"corpusgen.dev/pkg/corpusgen/internal/domain"
)

// planCmd represents the plan command.
var planCmd = newPlanCmd()

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Scan the corpus and write a test plan",
		Long:  planLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := workflow.Plan(cmd.Context(), domain.PlanArgs{
				CorpusArgs: corpusArgsFromConfig(),
				Output:     planPathFromConfig(),
			})

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(planCmd)
}
