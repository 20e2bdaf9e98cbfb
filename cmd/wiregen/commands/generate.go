package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wiregen/logger"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate REGISTRY",
		Short: "Generate a module and runtimes from a format registry",
		Long: `Generate type definitions and serialization code for one target language.

Without --target-dir the module is printed to stdout. Runtime libraries
(--with-runtimes) need a target directory. A registry of "-" is read from
stdin and then needs --module-name.

Examples:
  wiregen generate registry.yaml -l rust                          # lib.rs to stdout
  wiregen generate registry.yaml -l rust -o gen/ --encodings bcs  # crate under gen/
  wiregen generate registry.yaml -l python -o gen/ \
      --encodings bincode --with-runtimes serde,bincode           # package + runtimes
  dump-formats | wiregen generate - -l rust --module-name shapes  # registry on stdin
  wiregen generate registry.yaml -l python --manifest docs.toml   # with doc comments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			result, err := generate(cmd.Context(), s, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if result.OutputDir != "" && logger.ShouldOutput(verbosity, logger.OutputResults) {
				pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Generated %s module %q (%d containers) in %s",
					result.Language, s.ModuleName, len(result.Plan.Order()), result.OutputDir)
			}
			if logger.ShouldOutput(verbosity, logger.OutputProgress) {
				for _, rt := range result.Runtimes {
					pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("Installed %s runtime", rt)
				}
			}
			return nil
		},
	}
	addGenerationFlags(cmd.Flags())
	return cmd
}
