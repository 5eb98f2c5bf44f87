// Package pseudoterm provides a pseudo-terminal session that launches child
// commands through a shell, multiplexes their output to the controlling
// terminal and to in-process observers, and maintains a virtual screen model
// for headless introspection and resizing.
package pseudoterm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"mx/internal/tracelog"
)

const (
	readChunkSize     = 8 * 1024
	defaultScrollback = 10000
)

// ErrPTYWriteTimeout is returned by WriteInputTimeout when the write does not
// complete within the deadline. The child is likely not reading its stdin.
var ErrPTYWriteTimeout = errors.New("pty write timed out")

// Options configures a PseudoTerminal.
type Options struct {
	Rows     uint16
	Cols     uint16
	Writable bool
}

// DefaultOptions returns a writable session sized to the host terminal,
// falling back to 80x24.
func DefaultOptions() Options {
	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cols, rows = w, h
	}
	return Options{Rows: uint16(rows), Cols: uint16(cols), Writable: true}
}

// PseudoTerminal owns a PTY pair, the screen model, and the output pump.
// Child commands are spawned onto the slave side via RunCommand; the pair
// outlives individual commands.
type PseudoTerminal struct {
	ptm *os.File
	pts *os.File

	parserMu sync.RWMutex
	parser   *Parser

	// writerMu serializes access to the PTY master writer. When the session
	// is interactive the input pump acquires it for its lifetime.
	writerMu sync.Mutex
	writable bool

	frames   *textStream
	printing chan struct{}
	quiet    atomic.Bool
	running  atomic.Bool

	log *tracelog.Logger

	oscOnce sync.Once
	oscFg   string
	oscBg   string
}

// New opens a PTY pair, starts the output pump, and (for writable sessions
// on a TTY) starts the stdin pass-through pump.
func New(opts Options) (*PseudoTerminal, error) {
	log := tracelog.FromEnv()
	log.Trace("opening pseudo terminal", "rows", opts.Rows, "cols", opts.Cols)

	ptm, pts, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}
	if err := pty.Setsize(ptm, &pty.Winsize{Rows: opts.Rows, Cols: opts.Cols}); err != nil {
		ptm.Close()
		pts.Close()
		return nil, fmt.Errorf("set pty size: %w", err)
	}

	p := &PseudoTerminal{
		ptm:      ptm,
		pts:      pts,
		parser:   NewParser(int(opts.Rows), int(opts.Cols), defaultScrollback),
		frames:   newTextStream(),
		printing: make(chan struct{}, 1),
		log:      log,
	}
	p.quiet.Store(true)

	if opts.Writable {
		p.writable = true
		if isatty.IsTerminal(os.Stdout.Fd()) {
			log.Trace("passing through stdin")
			go p.inputPump()
		}
	}

	go p.outputPump()
	return p, nil
}

// inputPump forwards host stdin to the PTY master. It owns the writer lock
// for the lifetime of the session.
func (p *PseudoTerminal) inputPump() {
	p.writerMu.Lock()
	if err := copyInput(p.ptm, os.Stdin); err != nil {
		p.log.Trace("error writing to pty", "err", err.Error())
	}
}

// outputPump drains the PTY master in fixed-size chunks, feeding the screen
// model, the frame stream, and (unless quiet) host stdout. Runs until the
// reader fails or the session is closed.
func (p *PseudoTerminal) outputPump() {
	buf := make([]byte, readChunkSize)
readLoop:
	for {
		n, err := p.ptm.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			text := strings.ToValidUTF8(string(chunk), "�")
			p.frames.Send(text)
			p.respondOSCQueries(chunk)

			p.parserMu.Lock()
			p.parser.Process(chunk)
			p.parserMu.Unlock()

			if !p.quiet.Load() {
				out := text
				if strings.Contains(out, "\x1b[6n") {
					p.log.Trace("stripped device status report from output")
					out = strings.ReplaceAll(out, "\x1b[6n", "")
				}
				if !p.writeStdout([]byte(out)) {
					break readLoop
				}
			}
		}
		if err != nil {
			break
		}
		if !p.running.Load() {
			select {
			case p.printing <- struct{}{}:
			default:
			}
		}
	}
	select {
	case p.printing <- struct{}{}:
	default:
	}
	p.frames.Close()
}

// writeStdout writes data to host stdout, retrying interrupted writes.
// Returns false on any other error, which terminates the pump.
func (p *PseudoTerminal) writeStdout(data []byte) bool {
	logged := false
	for len(data) > 0 {
		n, err := os.Stdout.Write(data)
		data = data[n:]
		if err == nil {
			continue
		}
		if isInterrupted(err) {
			if !logged {
				p.log.Trace("interrupted writing to stdout", "err", err.Error())
				logged = true
			}
			continue
		}
		p.log.Trace("error writing to stdout", "err", err.Error())
		return false
	}
	return true
}

// respondOSCQueries answers OSC 10/11 color queries from the child so TUI
// programs can detect the palette without a real terminal on the other end.
func (p *PseudoTerminal) respondOSCQueries(data []byte) {
	wantFg := bytes.Contains(data, []byte("\x1b]10;?"))
	wantBg := bytes.Contains(data, []byte("\x1b]11;?"))
	if !wantFg && !wantBg {
		return
	}
	fg, bg := p.palette()
	if wantFg {
		fmt.Fprintf(p.ptm, "\x1b]10;%s\x1b\\", fg)
	}
	if wantBg {
		fmt.Fprintf(p.ptm, "\x1b]11;%s\x1b\\", bg)
	}
}

// WriteInput writes bytes to the PTY master. No-op for read-only sessions.
func (p *PseudoTerminal) WriteInput(input []byte) error {
	if !p.writable {
		return nil
	}
	p.writerMu.Lock()
	defer p.writerMu.Unlock()
	_, err := p.ptm.Write(input)
	return err
}

// WriteInputTimeout writes with a deadline. If the child is not reading its
// stdin the kernel PTY buffer fills and the write blocks; this runs the write
// in a goroutine so the caller can give up.
func (p *PseudoTerminal) WriteInputTimeout(input []byte, timeout time.Duration) (int, error) {
	if !p.writable {
		return 0, nil
	}
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		p.writerMu.Lock()
		defer p.writerMu.Unlock()
		n, err := p.ptm.Write(input)
		ch <- result{n, err}
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.n, r.err
	case <-timer.C:
		return 0, ErrPTYWriteTimeout
	}
}

// Resize rebuilds the screen model at the new dimensions, preserving history
// by replaying the raw output buffer. Dimensions are clamped to 3x20 minima.
func (p *PseudoTerminal) Resize(rows, cols uint16) error {
	if rows < 3 {
		rows = 3
	}
	if cols < 20 {
		cols = 20
	}

	p.parserMu.Lock()
	defer p.parserMu.Unlock()

	oldRows, _ := p.parser.Size()
	raw := make([]byte, len(p.parser.RawOutput()))
	copy(raw, p.parser.RawOutput())

	next := NewParser(int(rows), int(cols), defaultScrollback)
	next.Process(raw)

	// If we lost height, scroll up by the lost rows minus one to keep the
	// cursor at the bottom of the visible output.
	if int(rows) < oldRows {
		lost := oldRows - int(rows)
		next.SetScrollback(next.Scrollback() + lost - 1)
	}

	p.parser = next
	return nil
}

// ScrollUp moves the viewport one row further into history.
func (p *PseudoTerminal) ScrollUp() {
	p.parserMu.Lock()
	defer p.parserMu.Unlock()
	p.parser.SetScrollback(p.parser.Scrollback() + 1)
}

// ScrollDown moves the viewport one row toward the live screen.
func (p *PseudoTerminal) ScrollDown() {
	p.parserMu.Lock()
	defer p.parserMu.Unlock()
	if cur := p.parser.Scrollback(); cur > 0 {
		p.parser.SetScrollback(cur - 1)
	}
}

// GetScreen returns a snapshot of the visible viewport.
func (p *PseudoTerminal) GetScreen() *Screen {
	p.parserMu.RLock()
	defer p.parserMu.RUnlock()
	return p.parser.Screen()
}

// GetScrollOffset returns the current scrollback offset.
func (p *PseudoTerminal) GetScrollOffset() int {
	p.parserMu.RLock()
	defer p.parserMu.RUnlock()
	return p.parser.Scrollback()
}

// GetTotalContentRows returns the total rows of content the child produced.
func (p *PseudoTerminal) GetTotalContentRows() int {
	p.parserMu.RLock()
	defer p.parserMu.RUnlock()
	return p.parser.TotalContentRows()
}

// Close drops the PTY pair. The output pump sees EOF and terminates.
func (p *PseudoTerminal) Close() error {
	err := p.ptm.Close()
	if cerr := p.pts.Close(); err == nil {
		err = cerr
	}
	return err
}
