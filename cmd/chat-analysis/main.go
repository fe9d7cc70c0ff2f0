package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harue-dev/kimochi-report/analysis"
	"github.com/harue-dev/kimochi-report/analysis/fileutils"
	"github.com/harue-dev/kimochi-report/analysis/provider"
	"github.com/harue-dev/kimochi-report/slackio"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	setupLogging(cfg.LogLevel)

	// A .env file is a local-development convenience; in CI the values come
	// from the runner environment.
	if fileutils.FileExists(".env") {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("failed to load .env")
		} else {
			log.Info().Msg("loaded environment variables from .env")
		}
	}
	readEnv(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("chat analysis failed")
		os.Exit(1)
	}
}

func setupLogging(level string) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(ctx context.Context, cfg Config) error {
	promptCore := analysis.EmotionPromptCore
	if cfg.PromptFile != "" && fileutils.FileExists(cfg.PromptFile) {
		core, err := analysis.LoadPromptCore(cfg.PromptFile)
		if err != nil {
			return err
		}
		promptCore = core
		log.Info().Str("file", cfg.PromptFile).Msg("using prompt file")
	}

	if cfg.LiveReady() {
		return runLive(ctx, cfg, promptCore)
	}
	log.Info().Strs("missing", cfg.MissingEnv()).Msg("configuration incomplete, taking the debug path")
	return runDebug(ctx, cfg, promptCore)
}

// runLive fetches channel history, analyzes it per date, and posts one
// combined result message to the target channel.
func runLive(ctx context.Context, cfg Config, promptCore string) error {
	sc, err := slackio.New(cfg.SlackAPIToken)
	if err != nil {
		return err
	}

	entries, err := sc.FetchHistory(ctx, cfg.SourceChannelID)
	if err != nil {
		return err
	}
	buckets, err := bucketsFromTranscript(analysis.FormatHistory(entries))
	if err != nil {
		return err
	}

	results, err := analyze(ctx, cfg, promptCore, buckets)
	if err != nil {
		return err
	}

	content := analysis.FormatResults(results)
	if err := sc.PostMessage(ctx, cfg.TargetChannelID, content); err != nil {
		return err
	}
	log.Info().Str("channel", cfg.TargetChannelID).Int("dates", len(results)).Msg("posted emotion analysis")
	return nil
}

// runDebug reads the local conversation file, analyzes it when a model key is
// available, and writes the result file. Without a model key the grouped raw
// transcript is written instead.
func runDebug(ctx context.Context, cfg Config, promptCore string) error {
	b, err := os.ReadFile(cfg.DebugInPath)
	if err != nil {
		return fmt.Errorf("read debug conversation file: %w", err)
	}
	buckets, err := bucketsFromTranscript(string(b))
	if err != nil {
		return err
	}

	var content string
	if cfg.OpenAIAPIKey != "" {
		results, err := analyze(ctx, cfg, promptCore, buckets)
		if err != nil {
			return err
		}
		content = analysis.FormatResults(results)
	} else {
		log.Info().Msg("no model key configured, writing raw conversation data")
		content = analysis.FormatRaw(buckets)
	}

	if err := analysis.SaveToFile(cfg.DebugOutPath, content); err != nil {
		return err
	}
	log.Info().Str("file", cfg.DebugOutPath).Msg("wrote result file")
	return nil
}

func bucketsFromTranscript(transcript string) ([]analysis.DateBucket, error) {
	messages, skipped := analysis.ParseTranscript(transcript)
	if skipped > 0 {
		log.Warn().Int("lines", skipped).Msg("skipped malformed transcript lines")
	}
	buckets := analysis.GroupByDate(messages)
	if len(buckets) == 0 {
		return nil, errors.New("no parseable messages in conversation history")
	}
	return buckets, nil
}

func analyze(ctx context.Context, cfg Config, promptCore string, buckets []analysis.DateBucket) ([]analysis.AnalysisResult, error) {
	client, err := provider.New(cfg.OpenAIAPIKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	analyzer, err := analysis.NewEmotionAnalyzer(client, promptCore)
	if err != nil {
		return nil, err
	}
	return analyzer.AnalyzeByDate(ctx, buckets), nil
}
