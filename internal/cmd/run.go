package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"mx/internal/pseudoterm"
)

func newRunCmd() *cobra.Command {
	var cwd string
	var envEntries []string
	var execArgv string
	var quiet bool
	var tty bool

	cmd := &cobra.Command{
		Use:   "run [--cwd=<dir>] [--env K=V]... [--quiet] -- <command>",
		Short: "Run a command inside a pseudo-terminal session",
		Long: `Run a command through the platform shell inside a PTY, mirroring its
output to this terminal. The exit code of mx mirrors the child's.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.Join(args, " ")

			env, err := parseEnvEntries(envEntries)
			if err != nil {
				return err
			}

			var argv []string
			if execArgv != "" {
				argv, err = shlex.Split(execArgv)
				if err != nil {
					return fmt.Errorf("parse --exec-argv: %w", err)
				}
			}

			pt, err := pseudoterm.New(pseudoterm.DefaultOptions())
			if err != nil {
				return err
			}
			defer pt.Close()

			opts := pseudoterm.RunOptions{
				Command:    command,
				CommandDir: cwd,
				Env:        env,
				ExecArgv:   argv,
				Quiet:      quiet,
			}
			if cmd.Flags().Changed("tty") {
				opts.Tty = &tty
			}

			child, err := pt.RunCommand(opts)
			if err != nil {
				return err
			}

			// The output pump writes to stdout; the frame stream still has to
			// be drained so buffered frames don't accumulate.
			go func() {
				for range child.Messages() {
				}
			}()

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			defer signal.Stop(interrupt)

			for {
				select {
				case <-interrupt:
					child.Kill()
				case status := <-child.Exit():
					pt.Close()
					if !status.Success {
						code := status.Code
						if code <= 0 {
							code = 1
						}
						os.Exit(code)
					}
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory for the command (defaults to the current directory)")
	cmd.Flags().StringArrayVar(&envEntries, "env", nil, "Extra environment entries (K=V), repeatable")
	cmd.Flags().StringVar(&execArgv, "exec-argv", "", "Argv list exported to the child as NX_PSEUDO_TERMINAL_EXEC_ARGV")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Don't mirror child output to stdout")
	cmd.Flags().BoolVar(&tty, "tty", false, "Force raw-mode handling on or off (default: auto-detect)")

	return cmd
}

func parseEnvEntries(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env entry %q (expected K=V)", e)
		}
		env[k] = v
	}
	return env, nil
}
