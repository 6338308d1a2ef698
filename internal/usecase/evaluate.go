package usecase

import (
	"fmt"
	"strings"
	"time"

	ai "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/pkg/textx"
)

// EvaluateService orchestrates the answer-evaluation pipeline:
// prompt construction, the model call, and response normalization.
type EvaluateService struct {
	AI      domain.AIClient
	Prompts *ai.PromptBuilder
	Counter *tokencount.Counter
	Cfg     config.Config
}

// NewEvaluateService constructs an EvaluateService with its dependencies.
func NewEvaluateService(client domain.AIClient, prompts *ai.PromptBuilder, counter *tokencount.Counter, cfg config.Config) EvaluateService {
	return EvaluateService{AI: client, Prompts: prompts, Counter: counter, Cfg: cfg}
}

// Evaluate grades one answer. Missing question or answer fails fast without
// touching the model. The returned record echoes the original inputs and
// carries the evaluation timestamp.
func (s EvaluateService) Evaluate(ctx domain.Context, question, answer, experienceLevel string) (domain.EvaluationRecord, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return domain.EvaluationRecord{}, fmt.Errorf("%w: missing question or response", domain.ErrInvalidArgument)
	}
	if experienceLevel == "" {
		experienceLevel = domain.DefaultLevel
	}

	cleanAnswer := textx.SanitizeText(answer)
	prompt, err := s.Prompts.Evaluation(question, cleanAnswer, experienceLevel)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	prompt = s.fitToBudget(prompt, question, cleanAnswer, experienceLevel)

	raw, err := s.AI.GenerateContent(ctx, prompt, s.Cfg.GeminiMaxOutputTokens)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}

	ev, err := ai.DecodeEvaluation(raw)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	observability.EvaluationScoreHistogram.Observe(float64(ev.Score))

	return domain.EvaluationRecord{
		Evaluation:  ev,
		Question:    question,
		Answer:      answer,
		EvaluatedAt: time.Now().UTC(),
	}, nil
}

// fitToBudget truncates the answer when the full prompt exceeds the token
// budget, then rebuilds the prompt. Template text and question stay intact;
// only the answer shrinks.
func (s EvaluateService) fitToBudget(prompt, question, answer, experienceLevel string) string {
	budget := s.Cfg.PromptMaxTokens
	if budget <= 0 || s.Counter == nil {
		return prompt
	}
	total := s.Counter.Count(s.Cfg.GeminiModel, prompt)
	if total <= budget {
		return prompt
	}
	overflow := total - budget
	answerTokens := s.Counter.Count(s.Cfg.GeminiModel, answer)
	keep := answerTokens - overflow
	if keep < 1 {
		keep = 1
	}
	truncated := s.Counter.Truncate(s.Cfg.GeminiModel, answer, keep)
	observability.PromptTruncationsTotal.Inc()
	rebuilt, err := s.Prompts.Evaluation(question, truncated, experienceLevel)
	if err != nil {
		return prompt
	}
	return rebuilt
}
