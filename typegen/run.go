package typegen

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/format"
	"github.com/teranos/wiregen/logger"
)

// RunOptions describe one generation run.
type RunOptions struct {
	Language string
	Registry *format.Registry
	Config   *codegen.Config

	// OutputDir is where the module and runtimes are installed. When empty
	// the module is written to Stdout and no runtime can be installed.
	OutputDir string
	Stdout    io.Writer

	// SkipModule installs only the requested runtimes.
	SkipModule bool
	Runtimes   []Runtime

	PackageVersion string

	// FormatCommand is a shell-quoted command run in OutputDir after a
	// successful install, e.g. "cargo fmt".
	FormatCommand string

	// Verbosity gates the debug and trace records of the run.
	Verbosity int
}

// Run analyzes the registry and drives one backend through module and
// runtime installation.
func Run(ctx context.Context, backends *Registry, opts RunOptions, log *zap.SugaredLogger) (*Result, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	result := &Result{
		RunID:     uuid.New().String(),
		Language:  opts.Language,
		OutputDir: opts.OutputDir,
	}
	log = logger.RunLogger(log, result.RunID).With(logger.FieldLanguage, opts.Language)

	start := time.Now()
	plan, err := analyzer.Analyze(opts.Registry, opts.Config)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	analyzed := []interface{}{
		logger.FieldCount, len(plan.Order()),
		"cycles", len(plan.Cycles()),
		logger.FieldEncoding, opts.Config.Encodings(),
	}
	if logger.ShouldOutput(opts.Verbosity, logger.OutputTiming) {
		analyzed = append(analyzed, logger.FieldDurationMS, time.Since(start).Milliseconds())
	}
	log.Debugw("Analyzed registry", analyzed...)
	if logger.ShouldOutput(opts.Verbosity, logger.OutputCycles) {
		for _, c := range plan.Cycles() {
			log.Debugw("Recursive group", logger.FieldCycle, c.Members, "indirect", c.Edges)
		}
	}

	if opts.OutputDir == "" && len(opts.Runtimes) > 0 {
		return nil, errors.WithHint(
			errors.NewInvalidConfigError("installing runtimes requires an output directory"),
			"pass --target-dir")
	}

	installer, err := backends.New(opts.Language, InstallerOptions{
		OutputDir:      opts.OutputDir,
		PackageVersion: opts.PackageVersion,
		Logger:         log.With(logger.FieldComponent, "installer."+opts.Language),
	})
	if err != nil {
		return nil, err
	}

	if !opts.SkipModule {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := installModule(installer, plan, opts); err != nil {
			if errors.IsInstallationError(err) {
				log.Warnw("Installation failed", logger.FieldOperation, "install module", logger.FieldError, err)
			}
			return nil, err
		}
		result.ModuleInstalled = true
		log.Infow("Installed module", logger.FieldModule, opts.Config.ModuleName())
		if logger.ShouldOutput(opts.Verbosity, logger.OutputEmission) {
			for i, name := range plan.Order() {
				log.Debugw("Emitted container", logger.FieldContainer, name, "position", i,
					"recursive", plan.IsRecursive(name))
			}
		}
	}

	for _, rt := range opts.Runtimes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rt.Install(installer); err != nil {
			op := "install " + string(rt) + " runtime"
			log.Warnw("Installation failed", logger.FieldOperation, op, logger.FieldError, err)
			return nil, errors.WrapInstallation(err, opts.Language, op)
		}
		result.Runtimes = append(result.Runtimes, rt)
		log.Infow("Installed runtime", "runtime", rt)
	}

	if opts.FormatCommand != "" && opts.OutputDir != "" {
		if err := runFormatCommand(ctx, opts.FormatCommand, opts.OutputDir, log); err != nil {
			return nil, err
		}
	}

	if logger.ShouldOutput(opts.Verbosity, logger.OutputTiming) {
		log.Debugw("Generation complete", logger.FieldDurationMS, time.Since(start).Milliseconds())
	}
	return result, nil
}

func installModule(installer Installer, plan *analyzer.Plan, opts RunOptions) error {
	if opts.OutputDir != "" {
		return errors.WrapInstallation(installer.InstallModule(plan, opts.Config), opts.Language, "install module")
	}

	writer, ok := installer.(SourceWriter)
	if !ok {
		return errors.WithHintf(
			errors.NewInvalidConfigError("%s output needs an output directory", opts.Language),
			"pass --target-dir")
	}
	if opts.Stdout == nil {
		return errors.NewInvalidConfigError("no output stream")
	}
	return errors.WrapInstallation(writer.WriteModule(opts.Stdout, plan, opts.Config), opts.Language, "write module")
}

func runFormatCommand(ctx context.Context, command, dir string, log *zap.SugaredLogger) error {
	argv, err := shellquote.Split(command)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "format command %q: %v", command, err)
	}
	if len(argv) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.WithDetail(errors.Wrapf(err, "format command %q failed", command), string(out))
	}
	log.Infow("Formatted output", "command", argv[0], logger.FieldPath, dir)
	return nil
}
