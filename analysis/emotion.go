package analysis

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// EmotionSummary is the model's answer for one date.
type EmotionSummary struct {
	Summary          string
	DominantEmotions []string
}

// ModelClient obtains an emotion summary for a fully assembled prompt.
// It is an external collaborator; provider.Client implements it.
type ModelClient interface {
	AnalyzeEmotion(ctx context.Context, prompt string) (EmotionSummary, error)
}

// AnalysisResult is the per-date output of the analyzer. When the model call
// for a date failed, Err is set and Summary carries a human-readable error
// sentinel so downstream formatting can still emit something for that date.
type AnalysisResult struct {
	Date             string
	Summary          string
	DominantEmotions []string
	Err              error
}

// EmotionAnalyzer runs one model call per date bucket.
type EmotionAnalyzer struct {
	client     ModelClient
	promptCore string
}

// NewEmotionAnalyzer returns an analyzer using the given model client and
// prompt core. An empty promptCore falls back to EmotionPromptCore.
func NewEmotionAnalyzer(client ModelClient, promptCore string) (*EmotionAnalyzer, error) {
	if client == nil {
		return nil, errors.New("NewEmotionAnalyzer: client is nil")
	}
	return &EmotionAnalyzer{client: client, promptCore: promptCore}, nil
}

// AnalyzeByDate produces one AnalysisResult per bucket, in bucket order.
// A failed date records an error sentinel and the run continues; there is no
// retry.
func (a *EmotionAnalyzer) AnalyzeByDate(ctx context.Context, buckets []DateBucket) []AnalysisResult {
	results := make([]AnalysisResult, 0, len(buckets))
	for _, b := range buckets {
		prompt := BuildEmotionPrompt(a.promptCore, b.Date, RenderBucket(b))
		summary, err := a.client.AnalyzeEmotion(ctx, prompt)
		if err != nil {
			log.Error().Err(err).Str("date", b.Date).Msg("emotion analysis failed")
			results = append(results, AnalysisResult{
				Date:    b.Date,
				Summary: "分析エラー: " + err.Error(),
				Err:     err,
			})
			continue
		}
		log.Info().Str("date", b.Date).Int("messages", len(b.Messages)).Msg("analyzed emotions")
		results = append(results, AnalysisResult{
			Date:             b.Date,
			Summary:          summary.Summary,
			DominantEmotions: summary.DominantEmotions,
		})
	}
	return results
}
