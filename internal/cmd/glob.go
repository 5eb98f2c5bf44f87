package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGlobCmd() *cobra.Command {
	var flags indexFlags
	var exclude []string
	var perRoot bool

	cmd := &cobra.Command{
		Use:   "glob <pattern>... [--exclude=<pattern>]... [--per-root]",
		Short: "List indexed files matching glob patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext()
			if err != nil {
				return err
			}

			if perRoot {
				byRoot, err := ctx.MultiGlob(args, exclude)
				if err != nil {
					return err
				}
				for _, p := range byRoot.WorkspaceFiles {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				for root, paths := range byRoot.AdditionalRootFiles {
					for _, p := range paths {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", root, p)
					}
				}
				return nil
			}

			paths, err := ctx.Glob(args, exclude)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Exclude pattern, repeatable")
	cmd.Flags().BoolVar(&perRoot, "per-root", false, "Report matches per root instead of merged")

	return cmd
}
