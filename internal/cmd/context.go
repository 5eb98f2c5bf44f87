package cmd

import (
	"github.com/spf13/cobra"

	"mx/internal/config"
	"mx/internal/workspace"
)

// indexFlags are the shared flags for commands that query the file index.
type indexFlags struct {
	workspaceRoot   string
	additionalRoots []string
	cacheDir        string
}

func (f *indexFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.workspaceRoot, "workspace-root", "", "Workspace root (defaults to config, then the current directory)")
	cmd.Flags().StringArrayVar(&f.additionalRoots, "additional-root", nil, "Additional project root, repeatable")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "Files archive cache directory")
}

// newContext builds a workspace context from flags layered over the config.
func (f *indexFlags) newContext() (*workspace.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.workspaceRoot != "" {
		cfg.WorkspaceRoot = f.workspaceRoot
	}
	if len(f.additionalRoots) > 0 {
		cfg.AdditionalRoots = f.additionalRoots
	}
	if f.cacheDir != "" {
		cfg.CacheDir = f.cacheDir
	}
	return workspace.NewContext(cfg.ResolveWorkspaceRoot(), cfg.AdditionalRoots, cfg.ResolveCacheDir()), nil
}
