package provider

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for empty api key")
	}
	if _, err := New("sk-test", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
	c, err := New("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.model != "gpt-4o-mini" {
		t.Fatalf("model=%q", c.model)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		EmotionalSummary string   `json:"emotional_summary"`
		DominantEmotions []string `json:"dominant_emotions"`
	}

	t.Run("clean", func(t *testing.T) {
		t.Parallel()
		var p payload
		err := decodeModelJSON(`{"emotional_summary":"落ち着いた一日。","dominant_emotions":["安心"]}`, &p)
		if err != nil {
			t.Fatalf("decodeModelJSON: %v", err)
		}
		if p.EmotionalSummary != "落ち着いた一日。" || len(p.DominantEmotions) != 1 {
			t.Fatalf("payload=%+v", p)
		}
	})

	t.Run("wrapped_in_prose", func(t *testing.T) {
		t.Parallel()
		var p payload
		input := "Here is the analysis:\n```json\n{\"emotional_summary\":\"ok\",\"dominant_emotions\":[]}\n```\nDone."
		if err := decodeModelJSON(input, &p); err != nil {
			t.Fatalf("decodeModelJSON: %v", err)
		}
		if p.EmotionalSummary != "ok" {
			t.Fatalf("payload=%+v", p)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		var p payload
		if err := decodeModelJSON("   ", &p); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("err=%v, want io.ErrUnexpectedEOF", err)
		}
	})

	t.Run("no_object", func(t *testing.T) {
		t.Parallel()
		var p payload
		if err := decodeModelJSON("plain text answer", &p); err == nil {
			t.Fatal("expected error for non-JSON output")
		}
	})
}

func TestEmotionSchemaIsStrict(t *testing.T) {
	t.Parallel()

	if ap, ok := emotionSchema["additionalProperties"].(bool); !ok || ap {
		t.Fatalf("additionalProperties=%v", emotionSchema["additionalProperties"])
	}
	required, ok := emotionSchema["required"].([]string)
	if !ok {
		t.Fatalf("required has type %T", emotionSchema["required"])
	}
	if len(required) != 2 {
		t.Fatalf("required=%v", required)
	}
	props, ok := emotionSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("properties has type %T", emotionSchema["properties"])
	}
	for _, name := range []string{"emotional_summary", "dominant_emotions"} {
		if _, ok := props[name]; !ok {
			t.Fatalf("missing property %q", name)
		}
	}
}

func TestBuildRewriteInput(t *testing.T) {
	t.Parallel()

	got := buildRewriteInput("  current prompt  ", " make it shorter ")
	if !strings.Contains(got, "current prompt") {
		t.Fatalf("missing current prompt: %q", got)
	}
	if !strings.HasSuffix(got, "make it shorter") {
		t.Fatalf("missing instruction: %q", got)
	}
	if strings.Contains(got, "  current prompt  ") {
		t.Fatalf("current prompt not trimmed: %q", got)
	}
}
