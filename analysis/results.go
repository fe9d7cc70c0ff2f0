package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harue-dev/kimochi-report/analysis/fileutils"
)

// FormatResults renders per-date analysis results into the text block that is
// posted to the target channel or written to the debug output file. Results
// are rendered in date order regardless of input order.
func FormatResults(results []AnalysisResult) string {
	sorted := append([]AnalysisResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	var b strings.Builder
	b.WriteString("=== 日付ごとの感情分析 ===\n")
	for _, r := range sorted {
		fmt.Fprintf(&b, "\n日付: %s\n", r.Date)
		b.WriteString(r.Summary)
		b.WriteString("\n")
		if len(r.DominantEmotions) > 0 {
			fmt.Fprintf(&b, "主な感情: %s\n", strings.Join(r.DominantEmotions, "、"))
		}
	}
	return b.String()
}

// FormatRaw renders grouped conversation data without analysis, used on the
// debug path when no model key is configured.
func FormatRaw(buckets []DateBucket) string {
	var b strings.Builder
	b.WriteString("=== 日付ごとの会話データ ===\n")
	for _, bucket := range buckets {
		fmt.Fprintf(&b, "\n日付: %s\n", bucket.Date)
		b.WriteString(RenderBucket(bucket))
		b.WriteString("\n")
	}
	return b.String()
}

// SaveToFile writes content to path atomically, overwriting any existing
// file and creating parent directories as needed.
func SaveToFile(path, content string) error {
	if path == "" {
		return errors.New("SaveToFile: path is empty")
	}
	if err := fileutils.WriteFileAtomicSameDir(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("SaveToFile: write: %w", err)
	}
	return nil
}
