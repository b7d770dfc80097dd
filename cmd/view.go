package cmd

import (
	"github.com/spf13/cobra"

	"corpusgen.dev/pkg/corpusgen/internal/domain"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse a previously generated plan",
		Long:  "Browse the groups and cases of a previously generated plan snapshot.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{Plan: planPathFromConfig()})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
