package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

const (
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
)

// renderer abstracts the drawing strategy behind the tracker. All calls are
// made with the tracker lock held.
type renderer interface {
	register(line string, rows []string)
	update(rows []string)
	message(line string, rows []string)
	close()
}

// ansiRenderer redraws the whole progress block in place using cursor
// movement codes. The cursor always rests on the line below the block, so a
// repaint moves up over the previously drawn rows and rewrites every row.
type ansiRenderer struct {
	out   io.Writer
	drawn int
}

func newANSIRenderer(out io.Writer) *ansiRenderer {
	fmt.Fprint(out, ansiHideCursor)
	return &ansiRenderer{out: out}
}

func (r *ansiRenderer) register(line string, rows []string) {
	r.repaint(rows)
}

func (r *ansiRenderer) update(rows []string) {
	r.repaint(rows)
}

func (r *ansiRenderer) message(line string, rows []string) {
	var b strings.Builder
	b.WriteString("\r")
	if r.drawn > 0 {
		b.WriteString(text.CursorUp.Sprintn(r.drawn))
	}
	b.WriteString(text.EraseLine.Sprint())
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(text.EraseLine.Sprint())
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(text.EraseLine.Sprint())
		b.WriteString(row)
		b.WriteString("\n")
	}
	fmt.Fprint(r.out, b.String())
	r.drawn = len(rows)
}

func (r *ansiRenderer) close() {
	fmt.Fprint(r.out, ansiShowCursor)
}

func (r *ansiRenderer) repaint(rows []string) {
	var b strings.Builder
	b.WriteString("\r")
	if r.drawn > 0 {
		b.WriteString(text.CursorUp.Sprintn(r.drawn))
	}
	for _, row := range rows {
		b.WriteString(text.EraseLine.Sprint())
		b.WriteString(row)
		b.WriteString("\n")
	}
	fmt.Fprint(r.out, b.String())
	r.drawn = len(rows)
}

// plainRenderer emits sequential lines for non-interactive outputs. Row
// updates are dropped so log files are not flooded with fragment progress.
type plainRenderer struct {
	out io.Writer
}

func (r *plainRenderer) register(line string, rows []string) {
	fmt.Fprintln(r.out, line)
}

func (r *plainRenderer) update(rows []string) {}

func (r *plainRenderer) message(line string, rows []string) {
	fmt.Fprintln(r.out, line)
}

func (r *plainRenderer) close() {}

func isInteractive(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
