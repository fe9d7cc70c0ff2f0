package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatResults(t *testing.T) {
	t.Parallel()

	// Input deliberately out of date order.
	results := []AnalysisResult{
		{Date: "2023-01-02", Summary: "議論が白熱しました。"},
		{Date: "2023-01-01", Summary: "穏やかな一日でした。", DominantEmotions: []string{"安心", "喜び"}},
	}

	want := "=== 日付ごとの感情分析 ===\n" +
		"\n日付: 2023-01-01\n" +
		"穏やかな一日でした。\n" +
		"主な感情: 安心、喜び\n" +
		"\n日付: 2023-01-02\n" +
		"議論が白熱しました。\n"
	if got := FormatResults(results); got != want {
		t.Fatalf("FormatResults:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatResults_ErrorSentinelIsRendered(t *testing.T) {
	t.Parallel()

	results := []AnalysisResult{
		{Date: "2023-01-01", Summary: "分析エラー: model unavailable", Err: errors.New("model unavailable")},
	}
	want := "=== 日付ごとの感情分析 ===\n" +
		"\n日付: 2023-01-01\n" +
		"分析エラー: model unavailable\n"
	if got := FormatResults(results); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatRaw(t *testing.T) {
	t.Parallel()

	buckets := []DateBucket{
		{Date: "2023-01-01", Messages: []Message{
			{SenderID: "U1", Text: "おはよう"},
			{SenderID: "U2", Text: "hello"},
		}},
		{Date: "2023-01-02", Messages: []Message{
			{SenderID: "U1", Text: "また明日"},
		}},
	}

	want := "=== 日付ごとの会話データ ===\n" +
		"\n日付: 2023-01-01\n" +
		"U1: おはよう\nU2: hello\n" +
		"\n日付: 2023-01-02\n" +
		"U1: また明日\n"
	if got := FormatRaw(buckets); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSaveToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "result.txt")
	content := "=== 日付ごとの感情分析 ===\n\n日付: 2023-01-01\nほどほど。\n"

	if err := SaveToFile(path, content); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != content {
		t.Fatalf("content=%q, want %q", string(b), content)
	}

	// Overwrite replaces the previous content wholesale.
	if err := SaveToFile(path, "second\n"); err != nil {
		t.Fatalf("SaveToFile overwrite: %v", err)
	}
	b, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "second\n" {
		t.Fatalf("content=%q, want %q", string(b), "second\n")
	}
}

func TestSaveToFile_EmptyPath(t *testing.T) {
	t.Parallel()

	if err := SaveToFile("", "x"); err == nil {
		t.Fatal("expected error for empty path")
	}
}
