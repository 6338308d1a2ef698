package ai_test

import (
	"errors"
	"strings"
	"testing"

	ai "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

func TestNormalize_FencedReplyWithTrailingCommas(t *testing.T) {
	raw := "```json\n{\n  \"strengths\": [\"clear\",],\n  \"weaknesses\": [], // none found\n  \"score\": \"85\",\n}\n```"
	got := ai.Normalize(raw)
	if strings.Contains(got, "```") {
		t.Fatalf("fences not stripped: %q", got)
	}
	if strings.Contains(got, "//") {
		t.Fatalf("comment not stripped: %q", got)
	}
	if strings.Contains(got, ",]") || strings.Contains(got, ",}") {
		t.Fatalf("trailing separators not stripped: %q", got)
	}
}

func TestNormalize_IdempotentOnValidJSON(t *testing.T) {
	clean := `{"strengths":["a"],"score":90}`
	if got := ai.Normalize(clean); got != clean {
		t.Fatalf("valid JSON was altered: %q", got)
	}
	once := ai.Normalize("```json\n{\"score\": 5,}\n```")
	if twice := ai.Normalize(once); twice != once {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalize_PreservesURLsInStrings(t *testing.T) {
	raw := `{"suggestions": ["see https://example.com/docs"]}`
	got := ai.Normalize(raw)
	if !strings.Contains(got, "https://example.com/docs") {
		t.Fatalf("URL mangled: %q", got)
	}
}

func TestNormalize_ReplacesSentinelTokens(t *testing.T) {
	got := ai.Normalize(`{"score": undefined, "weaknesses": null}`)
	if strings.Contains(got, "undefined") || strings.Contains(got, "null") {
		t.Fatalf("sentinels survived: %q", got)
	}
}

func TestDecodeEvaluation_Success(t *testing.T) {
	raw := "```json\n" + `{
  "strengths": ["solid fundamentals", "clear explanation",],
  "weaknesses": ["no examples"],
  "score": "85",
  "suggestions": ["add a concrete example"],
  "keywordAnalysis": {"relevant": ["api", "rest"], "irrelevant": ["um"]},
}` + "\n```"
	ev, err := ai.DecodeEvaluation(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Score != 85 {
		t.Fatalf("score: want 85, got %d", ev.Score)
	}
	if len(ev.Strengths) != 2 || ev.Strengths[0] != "solid fundamentals" {
		t.Fatalf("strengths: %v", ev.Strengths)
	}
	if len(ev.KeywordAnalysis.Relevant) != 2 {
		t.Fatalf("relevant keywords: %v", ev.KeywordAnalysis.Relevant)
	}
}

func TestDecodeEvaluation_DefaultsMissingFields(t *testing.T) {
	ev, err := ai.DecodeEvaluation(`{"score": 40}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Strengths == nil || ev.Weaknesses == nil || ev.Suggestions == nil {
		t.Fatalf("nil slices leaked: %+v", ev)
	}
	if ev.KeywordAnalysis.Relevant == nil || ev.KeywordAnalysis.Irrelevant == nil {
		t.Fatalf("nil keyword slices leaked: %+v", ev.KeywordAnalysis)
	}
}

func TestDecodeEvaluation_NullArrayFieldsDegradeToEmpty(t *testing.T) {
	raw := `{"score": 50, "strengths": ["a"], "weaknesses": null, "suggestions": []}`
	ev, err := ai.DecodeEvaluation(raw)
	if err != nil {
		t.Fatalf("null array field must not fail decode: %v", err)
	}
	if ev.Score != 50 {
		t.Fatalf("score: want 50, got %d", ev.Score)
	}
	if len(ev.Strengths) != 1 || ev.Strengths[0] != "a" {
		t.Fatalf("strengths: %v", ev.Strengths)
	}
	if ev.Weaknesses == nil || len(ev.Weaknesses) != 0 {
		t.Fatalf("want empty weaknesses, got %v", ev.Weaknesses)
	}
}

func TestDecodeEvaluation_WrongTypedFieldsDegradeToEmpty(t *testing.T) {
	raw := `{"score": 60, "strengths": "solid", "keywordAnalysis": null}`
	ev, err := ai.DecodeEvaluation(raw)
	if err != nil {
		t.Fatalf("wrong-typed fields must not fail decode: %v", err)
	}
	if len(ev.Strengths) != 0 {
		t.Fatalf("string-typed strengths must become empty list: %v", ev.Strengths)
	}
	if ev.KeywordAnalysis.Relevant == nil || ev.KeywordAnalysis.Irrelevant == nil {
		t.Fatalf("keyword slices must default: %+v", ev.KeywordAnalysis)
	}
}

func TestDecodeEvaluation_UnrepairableKeepsRaw(t *testing.T) {
	raw := "I am sorry, I cannot evaluate that."
	_, err := ai.DecodeEvaluation(raw)
	if err == nil {
		t.Fatal("want error")
	}
	if !errors.Is(err, domain.ErrSchemaInvalid) {
		t.Fatalf("want ErrSchemaInvalid, got %v", err)
	}
	var pe *ai.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %T", err)
	}
	if pe.Raw != raw {
		t.Fatalf("raw reply not retained: %q", pe.Raw)
	}
	if !strings.Contains(err.Error(), raw) {
		t.Fatalf("error message misses raw reply: %q", err.Error())
	}
}

func TestDecodeQuestionList(t *testing.T) {
	qs, err := ai.DecodeQuestionList("```json\n[\"q1\", \"q2\", \"q3\",]\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 || qs[2] != "q3" {
		t.Fatalf("questions: %v", qs)
	}
	if _, err := ai.DecodeQuestionList("no list here"); !errors.Is(err, domain.ErrSchemaInvalid) {
		t.Fatalf("want ErrSchemaInvalid, got %v", err)
	}
}

func TestCoerceScore(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{float64(85), 85},
		{float64(72.6), 73},
		{"85", 85},
		{" 90 ", 90},
		{"85/100", 85},
		{"not a number", 0},
		{"", 0},
		{nil, 0},
		{float64(-5), 0},
		{float64(250), 100},
		{"120", 100},
		{true, 0},
	}
	for _, tc := range cases {
		if got := ai.CoerceScore(tc.in); got != tc.want {
			t.Errorf("CoerceScore(%#v): want %d, got %d", tc.in, tc.want, got)
		}
	}
}
