// Package commands implements the wiregen command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/logger"
	"github.com/teranos/wiregen/settings"
)

// verbosity is the -v count of the running command
var verbosity int

// NewRootCmd builds the wiregen command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wiregen",
		Short: "Generate type definitions and binary serializers from a format registry",
		Long: `wiregen - Type and serializer generation from a format registry.

wiregen reads a registry of container formats (YAML or JSON), orders the
containers so dependencies come first, detects recursive groups that need
indirection, and installs generated code plus runtime libraries for the
selected target language.

Available commands:
  generate  - Generate a module (and optionally runtimes)
  plan      - Show the emission order and recursive groups
  check     - Verify generated output is up to date
  watch     - Regenerate whenever the registry or manifest changes
  languages - List supported target languages
  version   - Show version information

Examples:
  wiregen generate registry.yaml -l rust -o gen/ --encodings bcs
  wiregen generate registry.yaml -l python --with-runtimes serde,bincode -o gen/
  wiregen plan registry.yaml --json
  wiregen check registry.yaml -l rust -o gen/`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ = cmd.Flags().GetCount("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("log-json")
			if !jsonLogs {
				if s, err := settings.Load(""); err == nil {
					jsonLogs = s.Log.JSON
				}
			}
			if err := logger.Initialize(jsonLogs, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			logger.ComponentLogger("cli").Debugw("Logger initialized",
				"command", cmd.Name(),
				"verbosity", logger.LevelName(verbosity),
				"json", jsonLogs)
			return nil
		},
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	root.AddCommand(
		newGenerateCmd(),
		newPlanCmd(),
		newCheckCmd(),
		newWatchCmd(),
		newLanguagesCmd(),
		newVersionCmd(),
	)
	return root
}
