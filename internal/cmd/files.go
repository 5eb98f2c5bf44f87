package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFilesCmd() *cobra.Command {
	var flags indexFlags
	var dir string

	cmd := &cobra.Command{
		Use:   "files [--dir=<subdir>]",
		Short: "List indexed workspace files with their content hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := flags.newContext()
			if err != nil {
				return err
			}
			if dir != "" {
				for _, p := range ctx.GetFilesInDirectory(dir) {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			}
			for _, f := range ctx.AllFileData() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", f.File, f.Hash)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "Only list files under this directory")

	return cmd
}
