package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"media-resizer/internal/resizer"

	"golang.org/x/term"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// printer writes status lines and, on a terminal, a live progress line that
// is redrawn in place.
type printer struct {
	mu    sync.Mutex
	out   io.Writer
	live  bool
	drawn bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, live: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) handle(ev resizer.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Type {
	case resizer.EventLog:
		p.clear()
		fmt.Fprintln(p.out, ev.Line)
	case resizer.EventProgress:
		if !p.live {
			return
		}
		p.clear()
		fmt.Fprintf(p.out, "[%3.0f%%] %s", ev.Progress.Fraction()*100, ev.Progress)
		p.drawn = true
	}
}

// summary ends the run with the final totals on their own line.
func (p *printer) summary(final resizer.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clear()
	fmt.Fprintln(p.out, final)
}

func (p *printer) clear() {
	if p.drawn {
		fmt.Fprint(p.out, clearLine)
		p.drawn = false
	}
}
