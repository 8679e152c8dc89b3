package telemock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maxbolgarin/errm"
)

// historyFile is the on-disk autosave format.
type historyFile struct {
	SavedAt  time.Time      `json:"saved_at"`
	Messages []HistoryEntry `json:"messages"`
}

// SaveHistory writes the current history snapshot to a JSON file. The
// whole file is rewritten on every call; partial writes of an append-only
// log are not worth the recovery complexity at test-history sizes.
func (s *Server) SaveHistory(fileName string) error {
	entries := s.history.snapshot()

	data, err := json.MarshalIndent(historyFile{
		SavedAt:  time.Now().UTC(),
		Messages: entries,
	}, "", "  ")
	if err != nil {
		return errm.Wrap(err, "marshal history")
	}

	if err := os.WriteFile(fileName, data, 0o644); err != nil {
		return errm.Wrap(err, "write history file")
	}

	s.log.Debug("history saved", "file", fileName, "entries", len(entries))
	return nil
}

// LoadHistory replaces the in-memory history with the content of a file
// written by SaveHistory. Id counters are not rewound: loaded history is
// for inspection, new sends keep their fresh ids.
func (s *Server) LoadHistory(fileName string) (int, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return 0, errm.Wrap(err, "read history file")
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, errm.Wrap(err, "unmarshal history")
	}

	s.history.restore(file.Messages)
	s.log.Debug("history loaded", "file", fileName, "entries", len(file.Messages))
	return len(file.Messages), nil
}

// ExportHistory writes the history in a format picked by the file
// extension: .json for the machine-readable entry list, .txt for a
// human-readable transcript. Unknown extensions are rejected.
func (s *Server) ExportHistory(fileName string) error {
	entries := s.history.snapshot()

	switch ext := filepath.Ext(fileName); ext {
	case ".json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return errm.Wrap(err, "marshal history")
		}
		return errm.Wrap(os.WriteFile(fileName, data, 0o644), "write export")

	case ".txt":
		return errm.Wrap(os.WriteFile(fileName, []byte(formatTranscript(entries)), 0o644), "write export")

	default:
		return ErrUnsupportedFormat.New("export file extension %q", ext)
	}
}

// formatTranscript renders history as one line per message, like
// "[2026-01-02 15:04:05] Bot: hello". Non-text content is summarized.
func formatTranscript(entries []HistoryEntry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Message == nil {
			continue
		}
		ts := time.Unix(e.Message.Date, 0).UTC().Format("2006-01-02 15:04:05")

		who := "User"
		if e.Direction == DirectionOutbound {
			who = "Bot"
		}
		if e.Message.From != nil && e.Message.From.FirstName != "" && e.Direction == DirectionInbound {
			who = e.Message.From.FirstName
		}

		text := e.Message.Text
		if text == "" {
			text = "[Non-text message]"
		}

		fmt.Fprintf(&b, "[%s] %s: %s\n", ts, who, text)
	}
	return b.String()
}
