package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mx",
		Short: "Native cores for the mx build orchestrator",
		Long: "mx exposes the orchestrator's native cores: a pseudo-terminal session " +
			"runner and a content-hashed workspace file index.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newFilesCmd(),
		newGlobCmd(),
		newHashCmd(),
		newVersionCmd(),
	)

	return rootCmd
}
