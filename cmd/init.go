package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configComments are written above the matching keys of a fresh config file.
var configComments = map[string]string{
	corpusRootKey:      "Directory holding the test-data files.",
	corpusIncludeKey:   `Glob ("*.kt") or "re:" expression; its first group names the test.`,
	corpusExcludeKey:   `Wins over include, e.g. "re:^(.+)\.fir\.kts?$" or "*.fir.{kt,kts}".`,
	corpusRecursiveKey: "When false, directories matching include are cases themselves.",
	corpusSkipDirsKey:  "Directory names that are never descended.",
	targetClassKey:     "Target the plan is built for, e.g. JVM_IR or NATIVE. Empty means any.",
	targetDirectiveKey: "Honor // TARGET_BACKEND: and // DONT_TARGET_EXACT_BACKEND: lines.",
	targetExclusionKey: "Per-target exclusion predicates, for example:\n" +
		"exclusions:\n" +
		"  NATIVE: [\"testsWithJava11/**\", \"suffix:_jvm\"]\n" +
		"  \"*\": [\"**/*.disabled.kt\"]",
	planOutputKey:    "Plan snapshot written by plan and read by check, view, run and watch.",
	runCommandKey:    "Command run for every case; {path} and {target} are replaced.",
	runTimeoutKey:    "Per-case timeout in seconds.",
	watchDebounceKey: "Milliseconds watch waits for changes to settle.",
}

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default " + configFileName + " configuration file",
		Long: `Create a ` + configFileName + ` in the current working directory populated with the
current CLI defaults and commented examples so it can be edited manually.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			content, err := renderConfig(viper.AllSettings())
			if err != nil {
				return fmt.Errorf("failed to render config file: %w", err)
			}

			if err := writeNewFile(targetPath, content); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// renderConfig encodes settings as YAML with configComments attached.
func renderConfig(settings map[string]any) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(settings); err != nil {
		return nil, err
	}

	annotateConfig(&doc, "")

	return yaml.Marshal(&doc)
}

func annotateConfig(node *yaml.Node, prefix string) {
	if node.Kind != yaml.MappingNode {
		return
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}

		if comment, ok := configComments[path]; ok {
			key.HeadComment = comment
		}

		annotateConfig(value, path)
	}
}

// writeNewFile fails when path already exists.
func writeNewFile(path string, content []byte) error {
	// #nosec G304 - path is the fixed config file name
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
