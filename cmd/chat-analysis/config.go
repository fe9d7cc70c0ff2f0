package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
)

type Config struct {
	Model      string
	PromptFile string

	DebugInPath  string
	DebugOutPath string

	LogLevel string

	// Environment-derived values. All four present means the live path;
	// any one missing means the debug path.
	OpenAIAPIKey    string
	SlackAPIToken   string
	SourceChannelID string
	TargetChannelID string
}

func (c Config) Validate() error {
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.DebugInPath == "" {
		return errors.New("missing -debug-in")
	}
	if c.DebugOutPath == "" {
		return errors.New("missing -debug-out")
	}
	return nil
}

// LiveReady reports whether every configuration value required for the live
// path is present.
func (c Config) LiveReady() bool {
	return len(c.MissingEnv()) == 0
}

// MissingEnv lists the names of required environment values that are absent.
func (c Config) MissingEnv() []string {
	var missing []string
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.SlackAPIToken == "" {
		missing = append(missing, "SLACK_API_TOKEN")
	}
	if c.SourceChannelID == "" {
		missing = append(missing, "SOURCE_CHANNEL_ID")
	}
	if c.TargetChannelID == "" {
		missing = append(missing, "TARGET_CHANNEL_ID")
	}
	return missing
}

func defaultConfig() Config {
	return Config{
		Model:        "gpt-4o-mini",
		PromptFile:   "emotion_analysis_prompt.txt",
		DebugInPath:  filepath.FromSlash("debug/conversation_history.txt"),
		DebugOutPath: filepath.FromSlash("debug/result.txt"),
		LogLevel:     "info",
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for emotion analysis")
	fs.StringVar(&cfg.PromptFile, "prompt-file", cfg.PromptFile, "Path to a prompt file overriding the built-in emotion analysis prompt (used when it exists)")
	fs.StringVar(&cfg.DebugInPath, "debug-in", cfg.DebugInPath, "Conversation history file read on the debug path")
	fs.StringVar(&cfg.DebugOutPath, "debug-out", cfg.DebugOutPath, "Result file written on the debug path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace|debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.DebugInPath = filepath.Clean(cfg.DebugInPath)
	cfg.DebugOutPath = filepath.Clean(cfg.DebugOutPath)
	if cfg.PromptFile != "" {
		cfg.PromptFile = filepath.Clean(cfg.PromptFile)
	}
	return cfg, nil
}

// readEnv fills the environment-derived configuration values.
func readEnv(cfg *Config) {
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.SlackAPIToken = os.Getenv("SLACK_API_TOKEN")
	cfg.SourceChannelID = os.Getenv("SOURCE_CHANNEL_ID")
	cfg.TargetChannelID = os.Getenv("TARGET_CHANNEL_ID")
}
