package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/wiregen/typegen/backends"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported target languages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, language := range backends.Default().Languages() {
				fmt.Fprintln(cmd.OutOrStdout(), language)
			}
		},
	}
}
