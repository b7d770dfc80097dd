// Package cmd provides the root command and CLI setup for corpusgen.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"corpusgen.dev/pkg/corpusgen/internal/adapter"
	"corpusgen.dev/pkg/corpusgen/internal/controller"
	"corpusgen.dev/pkg/corpusgen/internal/domain"
)

var fsAdapter adapter.CorpusFSAdapter
var planStore adapter.PlanStore
var caseRunner adapter.CaseRunnerAdapter
var corpusWatcher adapter.CorpusWatcher
var workflow domain.Workflow
var ui controller.UI

// Root-level flags shared by every command that reads or writes a corpus.
var (
	corpusRootFlag  string
	includeFlag     string
	excludeFlag     string
	recursiveFlag   bool
	skipDirsFlag    []string
	targetFlag      string
	directivesFlag  bool
	planPathFlag    string
	verboseLogsFlag bool
)

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalCorpusFSAdapter()
	planStore = adapter.NewPlanStore()
	caseRunner = configuredCaseRunner{}
	corpusWatcher = adapter.NewCorpusWatcher()
	workflow = domain.NewWorkflow(
		fsAdapter,
		planStore,
		caseRunner,
		corpusWatcher,
		ui,
	)
}

const patternsHelp = `Patterns are doublestar globs ("*.kt", "codegen/**/*.kt") or, with a
"re:" prefix, RE2 expressions ("re:^(.+)\.kt$") whose first group names the
generated test. Globs without a "/" and "re:" expressions match the file name
only; globs with a "/" and "pathre:" expressions match the path relative to
the corpus root.

In a glob "?" is exactly one character: "*.fir.kts?" does not match
"a.fir.kt". Write "*.fir.{kt,kts}" or "re:^(.+)\.fir\.kts?$" instead.`

const rootLongDescription = `corpusgen scans a directory tree of test-data files, freezes the eligible
files into a test plan and later verifies that the plan still matches the
disk, so that adding, removing or renaming a test-data file without
regenerating the tests fails loudly.

` + patternsHelp

const planLongDescription = `Walk the corpus root and write the plan snapshot the test-code writer
consumes (default: ` + defaultPlanOutput + `).

` + patternsHelp

const listLongDescription = `List the cases the corpus currently yields without writing a plan.

` + patternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "corpusgen",
		Short:         "Test corpus scanner and drift detector",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&corpusRootFlag, rootFlagName, "r", viper.GetString(corpusRootKey), "corpus root directory")
	bindFlagToConfig(flags.Lookup(rootFlagName), corpusRootKey)

	flags.StringVarP(&includeFlag, includeFlagName, "i", viper.GetString(corpusIncludeKey), "include pattern for test-data files")
	bindFlagToConfig(flags.Lookup(includeFlagName), corpusIncludeKey)

	flags.StringVarP(&excludeFlag, excludeFlagName, "x", viper.GetString(corpusExcludeKey), "exclude pattern, wins over include")
	bindFlagToConfig(flags.Lookup(excludeFlagName), corpusExcludeKey)

	flags.BoolVar(&recursiveFlag, recursiveFlagName, viper.GetBool(corpusRecursiveKey), "descend into subdirectories (otherwise directories are cases)")
	bindFlagToConfig(flags.Lookup(recursiveFlagName), corpusRecursiveKey)

	flags.StringArrayVar(&skipDirsFlag, skipDirFlagName, viper.GetStringSlice(corpusSkipDirsKey), "directory name never descended (can be repeated)")
	bindFlagToConfig(flags.Lookup(skipDirFlagName), corpusSkipDirsKey)

	flags.StringVarP(&targetFlag, targetFlagName, "t", viper.GetString(targetClassKey), "target class such as JVM or NATIVE (empty: any)")
	bindFlagToConfig(flags.Lookup(targetFlagName), targetClassKey)

	flags.BoolVar(&directivesFlag, directivesFlagName, viper.GetBool(targetDirectiveKey), "honor TARGET_BACKEND directives in file heads")
	bindFlagToConfig(flags.Lookup(directivesFlagName), targetDirectiveKey)

	flags.StringVarP(&planPathFlag, planFlagName, "P", viper.GetString(planOutputKey), "plan snapshot path")
	bindFlagToConfig(flags.Lookup(planFlagName), planOutputKey)

	flags.BoolVarP(&verboseLogsFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
