package pseudoterm

import (
	"bytes"
	"strings"

	"github.com/vito/midterm"
)

// Parser maintains the virtual screen for a PTY session. It feeds raw output
// into two midterm terminals: a fixed-size live grid and an append-only
// history buffer that never loses lines. The cumulative raw byte stream is
// retained so the screen can be rebuilt at a new size by replay.
type Parser struct {
	rows          int
	cols          int
	maxScrollback int

	screen  *midterm.Terminal // live rows x cols grid
	history *midterm.Terminal // append-only, grows vertically
	raw     bytes.Buffer
	offset  int // rows scrolled above the viewport
}

// NewParser creates a parser with the given viewport size and scrollback cap.
func NewParser(rows, cols, maxScrollback int) *Parser {
	history := midterm.NewTerminal(rows, cols)
	history.AutoResizeY = true
	history.AppendOnly = true
	return &Parser{
		rows:          rows,
		cols:          cols,
		maxScrollback: maxScrollback,
		screen:        midterm.NewTerminal(rows, cols),
		history:       history,
	}
}

// Process feeds raw PTY output into the screen model. Feeding the same byte
// stream into a fresh parser reproduces the same screen.
func (p *Parser) Process(data []byte) {
	p.raw.Write(data)
	p.screen.Write(data)
	p.history.Write(data)
}

// RawOutput returns the cumulative output byte stream since creation.
func (p *Parser) RawOutput() []byte {
	return p.raw.Bytes()
}

// Size returns the viewport dimensions.
func (p *Parser) Size() (rows, cols int) {
	return p.rows, p.cols
}

// TotalContentRows returns the number of rows the child has produced,
// including rows scrolled above the viewport.
func (p *Parser) TotalContentRows() int {
	last := 0
	for i := len(p.history.Content) - 1; i >= 0; i-- {
		if strings.TrimRight(string(p.history.Content[i]), " \x00") != "" {
			last = i + 1
			break
		}
	}
	if cur := p.history.Cursor.Y + 1; cur > last {
		last = cur
	}
	return last
}

// Scrollback returns the current scrollback offset.
func (p *Parser) Scrollback() int {
	return p.offset
}

// SetScrollback sets the scrollback offset, clamped to the available history
// and the scrollback cap.
func (p *Parser) SetScrollback(n int) {
	max := p.TotalContentRows() - p.rows
	if max < 0 {
		max = 0
	}
	if max > p.maxScrollback {
		max = p.maxScrollback
	}
	if n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	p.offset = n
}

// Cursor returns the live cursor position.
func (p *Parser) Cursor() (row, col int) {
	return p.screen.Cursor.Y, p.screen.Cursor.X
}

// Screen returns an immutable snapshot of the visible viewport at the
// current scrollback offset.
func (p *Parser) Screen() *Screen {
	lines := make([]string, p.rows)
	if p.offset == 0 {
		// Live view, anchored to the cursor: midterm can grow Content beyond
		// the viewport, so the cursor determines the visible window.
		start := p.screen.Cursor.Y - p.rows + 1
		if start < 0 {
			start = 0
		}
		for i := 0; i < p.rows; i++ {
			lines[i] = rowString(p.screen.Content, start+i)
		}
	} else {
		total := p.TotalContentRows()
		start := total - p.rows - p.offset
		if start < 0 {
			start = 0
		}
		for i := 0; i < p.rows; i++ {
			lines[i] = rowString(p.history.Content, start+i)
		}
	}
	return &Screen{rows: p.rows, cols: p.cols, lines: lines}
}

func rowString(content [][]rune, row int) string {
	if row < 0 || row >= len(content) {
		return ""
	}
	return strings.TrimRight(string(content[row]), " \x00")
}

// Screen is an immutable snapshot of the visible viewport.
type Screen struct {
	rows  int
	cols  int
	lines []string
}

// Size returns the snapshot dimensions.
func (s *Screen) Size() (rows, cols int) {
	return s.rows, s.cols
}

// Lines returns the visible rows, trailing whitespace trimmed.
func (s *Screen) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Contents returns the visible rows joined with newlines.
func (s *Screen) Contents() string {
	return strings.Join(s.lines, "\n")
}

// ContentsDiff returns the rows that differ from prev. Rows beyond prev's
// height count as changed.
func (s *Screen) ContentsDiff(prev *Screen) []string {
	var changed []string
	for i, line := range s.lines {
		if prev == nil || i >= len(prev.lines) || prev.lines[i] != line {
			changed = append(changed, line)
		}
	}
	return changed
}
