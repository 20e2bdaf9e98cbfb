package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/typegen"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check REGISTRY",
		Short: "Check that generated output is up to date",
		Long: `Regenerate into a temporary directory and compare the result with the
files under --target-dir. Files that only exist in the target directory are
ignored, as are build artifacts (target/, __pycache__/, Cargo.lock).

Exit codes:
  0 - Output is up to date
  2 - The registry or settings are invalid
  3 - Generation failed while installing output
  4 - Output is out of date (differing files listed)
  1 - Any other failure

Examples:
  wiregen check registry.yaml -l rust -o gen/ --encodings bcs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if s.OutputDir == "" {
				return errors.WithHint(
					errors.NewInvalidConfigError("check needs the directory to compare against"),
					"pass --target-dir")
			}
			existing := s.OutputDir

			tmp, err := os.MkdirTemp("", "wiregen-check-*")
			if err != nil {
				return errors.Wrap(err, "failed to create temp directory")
			}
			defer os.RemoveAll(tmp)

			s.OutputDir = tmp
			if _, err := generate(cmd.Context(), s, args[0], cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}

			result, err := typegen.CompareDirectories(tmp, existing)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.UpToDate {
				pterm.Success.WithWriter(out).Printfln("Generated output in %s is up to date", existing)
				return nil
			}
			for _, rel := range result.Differences {
				fmt.Fprintf(out, "  modified: %s\n", rel)
			}
			for _, rel := range result.Missing {
				fmt.Fprintf(out, "  missing:  %s\n", rel)
			}
			return errors.WithHint(
				errors.Wrapf(errors.ErrOutOfDate, "%d file(s) differ in %s",
					len(result.Differences)+len(result.Missing), existing),
				"run 'wiregen generate' with the same flags to update")
		},
	}
	addGenerationFlags(cmd.Flags())
	return cmd
}
