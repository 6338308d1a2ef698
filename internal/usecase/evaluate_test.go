package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	ai "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

type aiClientStub struct {
	reply   string
	err     error
	prompts []string
}

func (s *aiClientStub) GenerateContent(_ context.Context, prompt string, _ int) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newPrompts(t *testing.T) *ai.PromptBuilder {
	t.Helper()
	b, err := ai.NewPromptBuilder(config.PromptConfig{})
	if err != nil {
		t.Fatalf("NewPromptBuilder: %v", err)
	}
	return b
}

func TestEvaluateService_Evaluate(t *testing.T) {
	client := &aiClientStub{reply: "```json\n" + `{
  "strengths": ["good detail"],
  "weaknesses": ["too long"],
  "score": "78",
  "suggestions": ["be concise"],
  "keywordAnalysis": {"relevant": ["index"], "irrelevant": []},
}` + "\n```"}
	svc := NewEvaluateService(client, newPrompts(t), tokencount.NewCounter(), config.Config{GeminiModel: "gemini-1.5-flash"})

	rec, err := svc.Evaluate(context.Background(), "How do database indexes work?", "They speed up lookups.", "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if rec.Score != 78 {
		t.Fatalf("score: want 78, got %d", rec.Score)
	}
	if rec.Question != "How do database indexes work?" || rec.Answer != "They speed up lookups." {
		t.Fatalf("inputs not echoed: %+v", rec)
	}
	if rec.EvaluatedAt.IsZero() {
		t.Fatal("want evaluation timestamp")
	}
	if len(client.prompts) != 1 {
		t.Fatalf("want 1 model call, got %d", len(client.prompts))
	}
	if !strings.Contains(client.prompts[0], domain.DefaultLevel) {
		t.Fatalf("default experience level not applied: %q", client.prompts[0])
	}
}

func TestEvaluateService_MissingInputFailsFast(t *testing.T) {
	client := &aiClientStub{reply: "{}"}
	svc := NewEvaluateService(client, newPrompts(t), tokencount.NewCounter(), config.Config{})

	for _, tc := range [][2]string{{"", "answer"}, {"question", ""}, {"  ", "  "}} {
		if _, err := svc.Evaluate(context.Background(), tc[0], tc[1], "mid"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Evaluate(%q,%q): want ErrInvalidArgument, got %v", tc[0], tc[1], err)
		}
	}
	if len(client.prompts) != 0 {
		t.Fatalf("model must not be called on invalid input, got %d calls", len(client.prompts))
	}
}

func TestEvaluateService_UpstreamErrorPropagates(t *testing.T) {
	client := &aiClientStub{err: domain.ErrUpstreamTimeout}
	svc := NewEvaluateService(client, newPrompts(t), tokencount.NewCounter(), config.Config{})

	_, err := svc.Evaluate(context.Background(), "q", "a", "senior")
	if !errors.Is(err, domain.ErrUpstreamTimeout) {
		t.Fatalf("want ErrUpstreamTimeout, got %v", err)
	}
}

func TestEvaluateService_UnparseableReplyIsSchemaInvalid(t *testing.T) {
	client := &aiClientStub{reply: "I refuse to answer in JSON."}
	svc := NewEvaluateService(client, newPrompts(t), tokencount.NewCounter(), config.Config{})

	_, err := svc.Evaluate(context.Background(), "q", "a", "senior")
	if !errors.Is(err, domain.ErrSchemaInvalid) {
		t.Fatalf("want ErrSchemaInvalid, got %v", err)
	}
}

func TestEvaluateService_TruncatesOversizedAnswer(t *testing.T) {
	client := &aiClientStub{reply: `{"score": 50}`}
	cfg := config.Config{GeminiModel: "gemini-1.5-flash", PromptMaxTokens: 300}
	svc := NewEvaluateService(client, newPrompts(t), tokencount.NewCounter(), cfg)

	longAnswer := strings.Repeat("distributed consensus raft quorum leader election ", 200)
	if _, err := svc.Evaluate(context.Background(), "Explain raft.", longAnswer, "senior"); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	sent := client.prompts[0]
	if len(sent) >= len(longAnswer) {
		t.Fatalf("prompt not truncated: %d bytes sent", len(sent))
	}
}
