package pseudoterm

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// printingDrainTimeout bounds the post-exit wait for the output pump on
// Windows, where ConPTY may deliver the last bytes after the child exits.
const printingDrainTimeout = 500 * time.Millisecond

// ErrDirectoryResolution is returned when no command directory was given and
// the process working directory cannot be resolved.
var ErrDirectoryResolution = errors.New("failed to get current directory, please specify CommandDir explicitly")

// RunOptions configures a single command run inside the session.
type RunOptions struct {
	// Command is passed as a single argument to the platform shell.
	Command string
	// CommandDir is the child working directory; defaults to the process CWD.
	CommandDir string
	// Env entries overlay the process environment.
	Env map[string]string
	// ExecArgv, when non-nil, is joined by "|" and exported as
	// NX_PSEUDO_TERMINAL_EXEC_ARGV in the child environment.
	ExecArgv []string
	// Quiet suppresses forwarding of child output to host stdout.
	Quiet bool
	// Tty overrides stdout TTY detection for raw-mode handling.
	Tty *bool
}

// ExitStatus describes how a child command finished.
type ExitStatus struct {
	Code    int
	Success bool
}

// ChildProcess is the handle returned by RunCommand: a killer, the session's
// text-frame stream, and a capacity-1 exit channel. An exit channel that
// never delivers means the wait failed; consumers must treat absence as
// abnormal termination.
type ChildProcess struct {
	ID       string
	proc     *os.Process
	messages <-chan string
	exit     <-chan ExitStatus
}

// Kill signals the child to die. Asynchronous; does not wait.
func (c *ChildProcess) Kill() error {
	return c.proc.Kill()
}

// Messages returns the session's text-frame stream.
func (c *ChildProcess) Messages() <-chan string {
	return c.messages
}

// Exit returns the exit channel.
func (c *ChildProcess) Exit() <-chan ExitStatus {
	return c.exit
}

// RunCommand spawns command through the platform shell onto the slave side of
// the PTY and returns immediately. The exit status is delivered on the
// returned handle's exit channel by a detached wait goroutine.
func (p *PseudoTerminal) RunCommand(opts RunOptions) (*ChildProcess, error) {
	dir, err := resolveCommandDir(opts.CommandDir)
	if err != nil {
		return nil, err
	}

	p.quiet.Store(opts.Quiet)

	shell, shellFlag := shellCommand()
	cmd := exec.Command(shell, shellFlag, opts.Command)
	cmd.Dir = dir

	env := overlayEnv(opts.Env)
	if opts.ExecArgv != nil {
		env = append(env, "NX_PSEUDO_TERMINAL_EXEC_ARGV="+strings.Join(opts.ExecArgv, "|"))
	}
	cmd.Env = env

	attachChildTTY(cmd, p.pts)

	p.log.Trace("running command", "command", opts.Command)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn command: %w", err)
	}
	p.running.Store(true)

	isTTY := isatty.IsTerminal(os.Stdout.Fd())
	if opts.Tty != nil {
		isTTY = *opts.Tty
	}
	var restore *term.State
	if isTTY {
		p.log.Trace("enabling raw mode")
		restore, err = term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			// The child is already running; reap it so it doesn't leak.
			cmd.Process.Kill()
			cmd.Wait()
			p.running.Store(false)
			return nil, fmt.Errorf("enter raw mode: %w", err)
		}
	}

	exitCh := make(chan ExitStatus, 1)
	go p.waitForExit(cmd, opts.Command, isTTY, restore, exitCh)

	return &ChildProcess{
		ID:       uuid.New().String(),
		proc:     cmd.Process,
		messages: p.frames.C(),
		exit:     exitCh,
	}, nil
}

// waitForExit blocks on child exit. On Windows it then waits for the output
// pump to confirm draining (bounded) so ConPTY's trailing bytes land before
// raw mode is restored.
func (p *PseudoTerminal) waitForExit(cmd *exec.Cmd, command string, isTTY bool, restore *term.State, exitCh chan<- ExitStatus) {
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.log.Trace("error waiting for command", "command", command, "err", err.Error())
		return
	}

	p.log.Trace("command exited", "command", command)
	p.running.Store(false)

	if conptyDrain {
		p.log.Trace("waiting for printing to finish")
		select {
		case <-p.printing:
		case <-time.After(printingDrainTimeout):
		}
	}

	if isTTY {
		p.log.Trace("disabling raw mode")
		if rerr := term.Restore(int(os.Stdin.Fd()), restore); rerr != nil {
			// Background failure: log and leave the exit channel empty,
			// like a failed wait. Consumers treat absence as abnormal.
			p.log.Warn("failed to restore non-raw terminal", "err", rerr.Error())
			return
		}
	}

	exitCh <- ExitStatus{
		Code:    cmd.ProcessState.ExitCode(),
		Success: cmd.ProcessState.Success(),
	}
}

func resolveCommandDir(commandDir string) (string, error) {
	if commandDir != "" {
		return commandDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", ErrDirectoryResolution
	}
	return dir, nil
}

// overlayEnv builds the child environment from the process environment with
// extra entries overriding existing keys.
func overlayEnv(extra map[string]string) []string {
	if len(extra) == 0 {
		return os.Environ()
	}
	env := make([]string, 0, len(os.Environ())+len(extra))
	for _, e := range os.Environ() {
		key := e
		if idx := strings.Index(e, "="); idx >= 0 {
			key = e[:idx]
		}
		if _, override := extra[key]; !override {
			env = append(env, e)
		}
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}
