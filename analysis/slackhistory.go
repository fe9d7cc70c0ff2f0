package analysis

import (
	"math"
	"strings"
	"time"

	"github.com/harue-dev/kimochi-report/analysis/fileutils"
)

// HistoryEntry is one raw record from the chat-history collaborator: a sender
// id, the message text, and a unix-seconds timestamp (Slack "ts" style, with
// a fractional part).
type HistoryEntry struct {
	SenderID string
	Text     string
	UnixTS   float64
}

// FormatHistory renders raw history entries into the transcript line format
// consumed by ParseTranscript. Entries without a sender or with a
// non-positive timestamp are skipped, mirroring the history API's occasional
// system records. Message text is flattened to a single line so that one
// entry always produces one transcript line.
func FormatHistory(entries []HistoryEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.SenderID == "" || e.UnixTS <= 0 {
			continue
		}
		lines = append(lines, RenderLine(Message{
			SenderID:  e.SenderID,
			Text:      fileutils.SanitizeNewlines(strings.TrimSpace(e.Text)),
			Timestamp: unixSecondsToTime(e.UnixTS),
		}))
	}
	return strings.Join(lines, "\n")
}

// unixSecondsToTime converts fractional unix seconds to a UTC time.
func unixSecondsToTime(ts float64) time.Time {
	ns := int64(math.Round(ts * 1e9))
	return time.Unix(0, ns).UTC()
}
