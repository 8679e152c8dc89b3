package telemock

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/maxbolgarin/lang"
)

const defaultPollInterval = 200 * time.Millisecond

var (
	botColor  = color.New(color.FgCyan, color.Bold)
	userColor = color.New(color.FgGreen, color.Bold)
	dimColor  = color.New(color.FgHiBlack)
)

// TerminalMonitor prints the conversation to a terminal as it happens,
// colorized by direction. It polls history snapshots instead of
// subscribing, so slow terminals never slow the emulator down.
type TerminalMonitor struct {
	s        *Server
	out      io.Writer
	interval time.Duration

	printed int
}

// NewTerminalMonitor creates a monitor writing to stdout. Pass a writer
// to redirect the output, e.g. into a test buffer.
func NewTerminalMonitor(s *Server, out ...io.Writer) *TerminalMonitor {
	w := lang.First(out)
	if w == nil {
		w = os.Stdout
	}
	return &TerminalMonitor{
		s:        s,
		out:      w,
		interval: defaultPollInterval,
	}
}

// Run prints new history entries until ctx is canceled.
func (m *TerminalMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Flush()
			return
		case <-ticker.C:
			m.Flush()
		}
	}
}

// Flush prints everything that appeared since the previous flush.
func (m *TerminalMonitor) Flush() {
	entries := m.s.History()
	if m.printed > len(entries) {
		// History was cleared, start over.
		m.printed = 0
	}

	for _, e := range entries[m.printed:] {
		m.printEntry(e)
	}
	m.printed = len(entries)
}

func (m *TerminalMonitor) printEntry(e HistoryEntry) {
	if e.Message == nil {
		return
	}
	ts := dimColor.Sprint(time.Unix(e.Message.Date, 0).Format("15:04:05"))

	var who string
	if e.Direction == DirectionOutbound {
		who = botColor.Sprint("Bot")
	} else {
		name := "User"
		if e.Message.From != nil && e.Message.From.FirstName != "" {
			name = e.Message.From.FirstName
		}
		who = userColor.Sprint(name)
	}

	text := e.Message.Text
	if text == "" {
		text = dimColor.Sprint("[Non-text message]")
	}

	fmt.Fprintf(m.out, "%s %s: %s\n", ts, who, text)
}
