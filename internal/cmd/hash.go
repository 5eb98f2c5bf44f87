package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	var flags indexFlags
	var exclude []string

	cmd := &cobra.Command{
		Use:   "hash <pattern>... [--exclude=<pattern>]...",
		Short: "Print a combined content hash for the files matching globs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext()
			if err != nil {
				return err
			}
			digest, err := ctx.HashFilesMatchingGlob(args, exclude)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Exclude pattern, repeatable")

	return cmd
}
