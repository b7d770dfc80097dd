package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"

	m "corpusgen.dev/pkg/corpusgen/internal/model"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the corpusgen version",
		Long:  "Displays the corpusgen build version, the Go version it was built with and the plan snapshot format it reads and writes.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("version: unknown")
				cmd.Println("plan format\t", m.PlanVersion)

				return
			}

			cmd.Println("corpusgen\t", info.Main.Version)
			cmd.Println("go version\t", info.GoVersion)
			cmd.Println("plan format\t", m.PlanVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
