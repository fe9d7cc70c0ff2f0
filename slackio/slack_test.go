package slackio

import (
	"testing"

	"github.com/slack-go/slack"

	"github.com/harue-dev/kimochi-report/analysis"
)

func TestNew_EmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestHistoryEntryFromMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		msg    slack.Message
		want   analysis.HistoryEntry
		wantOK bool
	}{
		{
			name: "user_message",
			msg: slack.Message{Msg: slack.Msg{
				User:      "U12345",
				Text:      "こんにちは",
				Timestamp: "1672576496.000200",
			}},
			want:   analysis.HistoryEntry{SenderID: "U12345", Text: "こんにちは", UnixTS: 1672576496.0002},
			wantOK: true,
		},
		{
			name: "no_user",
			msg: slack.Message{Msg: slack.Msg{
				Text:      "bot or event record",
				Timestamp: "1672576496.000200",
			}},
			wantOK: false,
		},
		{
			name: "bad_timestamp",
			msg: slack.Message{Msg: slack.Msg{
				User:      "U12345",
				Text:      "x",
				Timestamp: "not-a-ts",
			}},
			wantOK: false,
		},
		{
			name: "zero_timestamp",
			msg: slack.Message{Msg: slack.Msg{
				User:      "U12345",
				Text:      "x",
				Timestamp: "0",
			}},
			wantOK: false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := historyEntryFromMessage(tc.msg)
			if ok != tc.wantOK {
				t.Fatalf("ok=%v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if got.SenderID != tc.want.SenderID || got.Text != tc.want.Text {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if got.UnixTS != tc.want.UnixTS {
				t.Fatalf("UnixTS=%v, want %v", got.UnixTS, tc.want.UnixTS)
			}
		})
	}
}

func TestSortEntriesByTime(t *testing.T) {
	t.Parallel()

	// conversations.history returns newest first.
	entries := []analysis.HistoryEntry{
		{SenderID: "U3", UnixTS: 300},
		{SenderID: "U2", UnixTS: 200},
		{SenderID: "U1", UnixTS: 100},
	}
	sortEntriesByTime(entries)
	for i, want := range []string{"U1", "U2", "U3"} {
		if entries[i].SenderID != want {
			t.Fatalf("entries[%d]=%q, want %q", i, entries[i].SenderID, want)
		}
	}
}
