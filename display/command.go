// Package display holds CLI output helpers shared by commands.
package display

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// JSONEnvVar forces JSON output for every command that supports it.
const JSONEnvVar = "WIREGEN_JSON"

// ShouldOutputJSON determines if a command should output JSON based on its
// --json flag and, when the flag was not given, WIREGEN_JSON.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd != nil && cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	enabled, err := strconv.ParseBool(os.Getenv(JSONEnvVar))
	return err == nil && enabled
}
