package typegen

import "github.com/teranos/wiregen/analyzer"

// Result describes one completed generation run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Language is the backend that produced the output.
	Language string

	// Plan is the analyzed registry the output was generated from.
	Plan *analyzer.Plan

	// ModuleInstalled is false when only runtimes were requested.
	ModuleInstalled bool

	// Runtimes lists the runtimes installed, in install order.
	Runtimes []Runtime

	// OutputDir is the root the output was written under; empty when the
	// module was written to a stream.
	OutputDir string
}
