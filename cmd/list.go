package cmd

import (
	"github.com/spf13/cobra"

	"corpusgen.dev/pkg/corpusgen/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cases the corpus yields",
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.List(cmd.Context(), domain.ListArgs{CorpusArgs: corpusArgsFromConfig()})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
