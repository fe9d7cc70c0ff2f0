package analysis

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/harue-dev/kimochi-report/analysis/fileutils"
)

// EmotionPromptCore is the built-in per-date emotion analysis instruction.
// It can be replaced by a prompt file (see LoadPromptCore), which is what the
// prompt-update tool maintains.
const EmotionPromptCore = `これらのメッセージからユーザーの感情状態を簡潔に分析してください。
ポジティブな感情、ネガティブな感情、中立的な感情などを特定し、
その日のユーザーの全体的な感情状態を3-5文程度で簡潔に要約してください。
冗長な説明は避け、要点のみを述べてください。`

// maxPromptTranscriptChars caps the transcript portion of a prompt so a very
// busy day cannot blow past the model's input budget.
const maxPromptTranscriptChars = 80_000

// LoadPromptCore reads a prompt core from a file, for overriding
// EmotionPromptCore.
func LoadPromptCore(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("LoadPromptCore: path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("LoadPromptCore: read file: %w", err)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", errors.New("LoadPromptCore: prompt file is empty after trimming whitespace")
	}
	return s, nil
}

// BuildEmotionPrompt assembles the per-date analysis prompt from the prompt
// core, the bucket date, and the rendered transcript for that date.
func BuildEmotionPrompt(core, date, transcript string) string {
	core = strings.TrimSpace(core)
	if core == "" {
		core = EmotionPromptCore
	}
	transcript = fileutils.Truncate(transcript, maxPromptTranscriptChars)
	return fmt.Sprintf("以下は特定の日付（%s）のチャットメッセージです。\n%s\n\nメッセージ:\n%s\n", date, core, transcript)
}
