package logger

// Output controls what categories of information the CLI prints at each
// verbosity level, independent of log severity.
//
//	0 (default) - generated code, plan, errors with hints
//	1 (-v)      - + written files, runtime installs, watch events
//	2 (-vv)     - + cycle records, indirection edges, timing, config
//	3 (-vvv)    - + per-container emission

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	OutputResults OutputCategory = iota // Plan listing, check verdict
	OutputErrors                        // Errors with hints

	OutputProgress    // Files written, runtimes installed
	OutputWatchEvents // Registry change notifications

	OutputCycles // Cycle records and indirection edges
	OutputTiming // Phase durations
	OutputConfig // Settings values after load

	OutputEmission // Per-container emission trace
)

var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputProgress:    VerbosityInfo,
	OutputWatchEvents: VerbosityInfo,

	OutputCycles: VerbosityDebug,
	OutputTiming: VerbosityDebug,
	OutputConfig: VerbosityDebug,

	OutputEmission: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}
