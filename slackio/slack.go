package slackio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/harue-dev/kimochi-report/analysis"
)

// historyPageLimit is the per-request message cap for conversations.history.
const historyPageLimit = 200

// Client wraps the Slack Web API for the two operations this pipeline needs:
// fetching channel history and posting a message.
type Client struct {
	api *slack.Client
}

// New builds a Client from an API token.
func New(token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("slackio.New: token is empty")
	}
	return &Client{api: slack.New(token)}, nil
}

// FetchHistory retrieves the conversation history of a channel, following
// pagination cursors, and returns entries ordered oldest first.
func (c *Client) FetchHistory(ctx context.Context, channelID string) ([]analysis.HistoryEntry, error) {
	if channelID == "" {
		return nil, errors.New("slackio: channel id is empty")
	}

	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     historyPageLimit,
	}

	var entries []analysis.HistoryEntry
	for {
		resp, err := c.api.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("slackio: conversations.history: %w", err)
		}
		for _, msg := range resp.Messages {
			e, ok := historyEntryFromMessage(msg)
			if !ok {
				continue
			}
			entries = append(entries, e)
		}
		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		params.Cursor = resp.ResponseMetaData.NextCursor
	}

	sortEntriesByTime(entries)
	log.Info().Str("channel", channelID).Int("messages", len(entries)).Msg("fetched conversation history")
	return entries, nil
}

// PostMessage delivers text to a channel.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	if channelID == "" {
		return errors.New("slackio: channel id is empty")
	}
	if _, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slackio: chat.postMessage: %w", err)
	}
	log.Info().Str("channel", channelID).Msg("posted message")
	return nil
}

// historyEntryFromMessage converts one API message into a HistoryEntry.
// Messages without a user or with an unparseable ts are dropped, which covers
// bot posts and channel-event records.
func historyEntryFromMessage(msg slack.Message) (analysis.HistoryEntry, bool) {
	if msg.User == "" || msg.Timestamp == "" {
		return analysis.HistoryEntry{}, false
	}
	ts, err := strconv.ParseFloat(msg.Timestamp, 64)
	if err != nil || ts <= 0 {
		return analysis.HistoryEntry{}, false
	}
	return analysis.HistoryEntry{
		SenderID: msg.User,
		Text:     msg.Text,
		UnixTS:   ts,
	}, true
}

// sortEntriesByTime orders entries oldest first. The history API returns
// newest first.
func sortEntriesByTime(entries []analysis.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UnixTS < entries[j].UnixTS
	})
}
