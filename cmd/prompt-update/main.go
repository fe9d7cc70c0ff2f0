package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/harue-dev/kimochi-report/analysis"
	"github.com/harue-dev/kimochi-report/analysis/fileutils"
	"github.com/harue-dev/kimochi-report/analysis/provider"
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

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	current := analysis.EmotionPromptCore
	if fileutils.FileExists(cfg.PromptFile) {
		current, err = analysis.LoadPromptCore(cfg.PromptFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	client, err := provider.New(apiKey, cfg.Model)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "updating emotion analysis prompt using %s with instruction: %s\n", cfg.Model, cfg.Instruction)
	updated, err := client.RewritePrompt(ctx, current, cfg.Instruction)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if err := fileutils.WriteFileAtomicSameDir(cfg.PromptFile, []byte(updated+"\n"), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write prompt file: %w", err).Error())
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "updated %s\n", cfg.PromptFile)
}

type Config struct {
	Model      string
	PromptFile string
	APIKey     string

	// Instruction is the free-form modification request, e.g.
	// "要約が少々長いので、1・2行となるようにしてほしい".
	Instruction string
}

func (c Config) Validate() error {
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.PromptFile == "" {
		return errors.New("missing -prompt-file")
	}
	if strings.TrimSpace(c.Instruction) == "" {
		return errors.New("missing instruction argument")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Model:      "gpt-4o-mini",
		PromptFile: "emotion_analysis_prompt.txt",
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model used to rewrite the prompt")
	fs.StringVar(&cfg.PromptFile, "prompt-file", cfg.PromptFile, "Prompt file to read and update")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.PromptFile = filepath.Clean(cfg.PromptFile)
	cfg.Instruction = strings.TrimSpace(strings.Join(fs.Args(), " "))
	return cfg, nil
}
