package main

import (
	"fmt"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"otterpack/internal/convert"
)

// progressPrinter renders conversion events. On a terminal each Processing
// event overwrites the previous line; otherwise every event gets its own line.
type progressPrinter struct {
	out         io.Writer
	interactive bool
	colorize    bool
	pending     bool
	caser       cases.Caser
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	tty := isTerminal(out)
	return &progressPrinter{out: out, interactive: tty, colorize: tty, caser: cases.Title(language.English)}
}

// consume renders events until the stream closes and returns the terminal event.
func (p *progressPrinter) consume(events <-chan convert.Event) convert.Event {
	var last convert.Event
	for ev := range events {
		p.print(ev)
		last = ev
	}
	return last
}

func (p *progressPrinter) print(ev convert.Event) {
	label := p.caser.String(ev.Kind.String())
	switch ev.Kind {
	case convert.EventProcessing:
		line := fmt.Sprintf("%s %s [%d/%d]", label, ev.Filename, ev.Index+1, ev.Total)
		if p.interactive {
			fmt.Fprint(p.out, ansiClearLine+line)
			p.pending = true
			return
		}
		fmt.Fprintln(p.out, line)
	case convert.EventFinished:
		p.endLine()
		fmt.Fprintln(p.out, renderStatusLine(label, statusOK, "", p.colorize))
	case convert.EventFailed:
		p.endLine()
		fmt.Fprintln(p.out, renderStatusLine(label, statusError, fmt.Sprint(ev.Err), p.colorize))
	}
}

func (p *progressPrinter) endLine() {
	if p.pending {
		fmt.Fprint(p.out, ansiClearLine)
		p.pending = false
	}
}
