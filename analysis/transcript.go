package analysis

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is the timestamp format used by transcript lines:
// "SENDER: TEXT (timestamp: 2023-01-01 12:34:56)".
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date portion of TimestampLayout.
const DateLayout = "2006-01-02"

// Message is one parsed transcript line.
type Message struct {
	SenderID  string
	Text      string
	Timestamp time.Time
}

// Date returns the calendar date of the message as "YYYY-MM-DD".
func (m Message) Date() string {
	return m.Timestamp.Format(DateLayout)
}

// DateBucket holds all messages sharing one calendar date, ordered by
// timestamp ascending.
type DateBucket struct {
	Date     string
	Messages []Message
}

// MalformedLineError reports a transcript line that does not match the
// expected shape.
type MalformedLineError struct {
	LineNumber int
	Line       string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed transcript line %d: %q", e.LineNumber, e.Line)
}

var transcriptLineRe = regexp.MustCompile(`^([A-Z0-9]+):\s+(.*?)\s+\(timestamp:\s+(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\)$`)

// ParseLine parses a single transcript line. It returns a *MalformedLineError
// when the line does not match the expected shape.
func ParseLine(lineNumber int, line string) (Message, error) {
	m := transcriptLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Message{}, &MalformedLineError{LineNumber: lineNumber, Line: line}
	}
	ts, err := time.Parse(TimestampLayout, m[3])
	if err != nil {
		return Message{}, &MalformedLineError{LineNumber: lineNumber, Line: line}
	}
	return Message{
		SenderID:  m[1],
		Text:      strings.TrimSpace(m[2]),
		Timestamp: ts.UTC(),
	}, nil
}

// ParseTranscript parses a whole conversation transcript, one message per
// line. Malformed lines are skipped; the count of skipped lines is returned
// so callers can surface a warning. Blank lines are ignored and do not count
// as malformed.
func ParseTranscript(transcript string) (messages []Message, skipped int) {
	sc := bufio.NewScanner(strings.NewReader(transcript))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNumber := 0
	for sc.Scan() {
		lineNumber++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		msg, err := ParseLine(lineNumber, line)
		if err != nil {
			skipped++
			continue
		}
		messages = append(messages, msg)
	}
	return messages, skipped
}

// GroupByDate partitions messages into per-date buckets. Buckets are ordered
// chronologically; inside a bucket messages are ordered by timestamp
// ascending, preserving input order for equal timestamps.
func GroupByDate(messages []Message) []DateBucket {
	byDate := make(map[string][]Message)
	for _, m := range messages {
		d := m.Date()
		byDate[d] = append(byDate[d], m)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	buckets := make([]DateBucket, 0, len(dates))
	for _, d := range dates {
		msgs := byDate[d]
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		})
		buckets = append(buckets, DateBucket{Date: d, Messages: msgs})
	}
	return buckets
}

// RenderLine renders a message back into its transcript line form. For
// well-formed input, ParseLine followed by RenderLine round-trips sender,
// text, and timestamp.
func RenderLine(m Message) string {
	return fmt.Sprintf("%s: %s (timestamp: %s)", m.SenderID, m.Text, m.Timestamp.Format(TimestampLayout))
}

// RenderBucket renders a bucket as a prompt-ready transcript: one
// "SENDER: TEXT" line per message, without timestamps.
func RenderBucket(b DateBucket) string {
	lines := make([]string, 0, len(b.Messages))
	for _, m := range b.Messages {
		lines = append(lines, m.SenderID+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}
