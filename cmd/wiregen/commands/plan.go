package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/display"
	"github.com/teranos/wiregen/logger"
)

func newPlanCmd() *cobra.Command {
	var textOutput bool

	cmd := &cobra.Command{
		Use:   "plan REGISTRY",
		Short: "Show the emission order and recursive groups",
		Long: `Analyze a registry and print the order containers are emitted in,
the recursive groups found and the references that need indirection.

Examples:
  wiregen plan registry.yaml                    # table
  wiregen plan registry.yaml --text             # plain report
  wiregen plan registry.yaml --json             # machine readable
  wiregen plan registry.yaml --manifest m.toml  # honour external definitions`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			reg, cfg, err := loadInputs(s, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			plan, err := analyzer.Analyze(reg, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case display.ShouldOutputJSON(cmd):
				return display.OutputJSON(out, plan.Summary())
			case textOutput:
				fmt.Fprint(out, plan.String())
			default:
				return renderPlanTable(cmd, plan)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output the plan as JSON")
	cmd.Flags().BoolVar(&textOutput, "text", false, "Output the plan as a plain text report")
	addAnalysisFlags(cmd.Flags())
	return cmd
}

func renderPlanTable(cmd *cobra.Command, plan *analyzer.Plan) error {
	out := cmd.OutOrStdout()

	data := pterm.TableData{{"#", "Container", "Depends on", "Recursive"}}
	for i, name := range plan.Order() {
		deps := strings.Join(plan.Dependencies(name), ", ")
		if ext := plan.ExternalReferences(name); len(ext) > 0 {
			if deps != "" {
				deps += ", "
			}
			deps += "extern " + strings.Join(ext, ", ")
		}
		recursive := ""
		if plan.IsRecursive(name) {
			recursive = "yes"
		}
		data = append(data, []string{fmt.Sprint(i + 1), name, deps, recursive})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render(); err != nil {
		return err
	}

	cycles := plan.Cycles()
	if len(cycles) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Recursive groups: %d\n", len(cycles))
	for _, c := range cycles {
		fmt.Fprintf(out, "  {%s}\n", strings.Join(c.Members, ", "))
		if logger.ShouldOutput(verbosity, logger.OutputCycles) {
			for _, e := range c.Edges {
				fmt.Fprintf(out, "    %s\n", e)
			}
		}
	}
	return nil
}
