package standard

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the Cobra-based CLI entry point.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridpilot",
		Short: "Gridpilot command-line interface",
		Long:  "Gridpilot turns free-text instructions into streamed grid-navigation runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("api", "a", envOrDefault("GRIDPILOT_API_BASE", "http://127.0.0.1:8787"), "planner backend base URL")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newTUICmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the Gridpilot client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Gridpilot CLI (prototype)\n")
		},
	}
}
