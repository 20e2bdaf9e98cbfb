package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/logger"
	"github.com/teranos/wiregen/settings"
	"github.com/teranos/wiregen/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch REGISTRY",
		Short: "Regenerate whenever the registry or manifest changes",
		Long: `Generate once, then watch the registry, the manifest and wiregen.toml
and regenerate after each change. Settings are read again for every
regeneration, so edits to wiregen.toml apply on the next run; the set of
watched files is fixed at startup. Rapid successive writes are coalesced
(watch.debounce_ms, default 300). A failed regeneration is reported and
watching continues. Stop with Ctrl-C.

Examples:
  wiregen watch registry.yaml -l rust -o gen/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			registryPath := args[0]
			if registryPath == stdinRegistry {
				return errors.NewInvalidConfigError("watch needs a registry file, not stdin")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			regenerate := newRegenerator(cmd, registryPath)

			// A broken registry at startup is reported like any later failure
			_ = regenerate(ctx, []string{registryPath})

			files := []string{registryPath}
			if s.Manifest != "" {
				files = append(files, s.Manifest)
			}
			if path := settings.FindProjectConfig(""); path != "" {
				files = append(files, path)
			}

			w, err := watch.New(files, time.Duration(s.Watch.DebounceMS)*time.Millisecond, logger.ComponentLogger("watch"))
			if err != nil {
				return err
			}
			pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("Watching %d file(s), press Ctrl-C to stop", len(w.Files()))
			return w.Run(ctx, regenerate)
		},
	}
	addGenerationFlags(cmd.Flags())
	return cmd
}

// newRegenerator returns the change handler of watch. Each call reloads
// settings so wiregen.toml edits take effect. Failures are printed and
// swallowed to keep the watcher running.
func newRegenerator(cmd *cobra.Command, registryPath string) watch.ChangeFunc {
	errOut := cmd.ErrOrStderr()
	return func(ctx context.Context, changed []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			PrintError(errOut, err)
			return nil
		}
		result, err := generate(ctx, s, registryPath, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			PrintError(errOut, err)
			return nil
		}
		if !logger.ShouldOutput(verbosity, logger.OutputWatchEvents) {
			return nil
		}
		if logger.JSONOutput {
			logger.ComponentLogger("watch").Infow("Regenerated",
				logger.FieldRunID, result.RunID,
				logger.FieldCount, len(result.Plan.Order()),
				logger.FieldFile, changed)
			return nil
		}
		pterm.Success.WithWriter(errOut).Printfln("Regenerated %d containers (%d file(s) changed)",
			len(result.Plan.Order()), len(changed))
		return nil
	}
}
