package usecase

import (
	"errors"
	"fmt"
	"strings"

	"log/slog"

	ai "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// DefaultQuestionCount is used when the client does not ask for a specific
// number of questions.
const DefaultQuestionCount = 5

// GenerateService produces interview question sets for a role and level.
// Cache is optional; when nil every request hits the model.
type GenerateService struct {
	AI      domain.AIClient
	Prompts *ai.PromptBuilder
	Cache   domain.QuestionCache
	Cfg     config.Config
}

// NewGenerateService constructs a GenerateService with its dependencies.
func NewGenerateService(client domain.AIClient, prompts *ai.PromptBuilder, cache domain.QuestionCache, cfg config.Config) GenerateService {
	return GenerateService{AI: client, Prompts: prompts, Cache: cache, Cfg: cfg}
}

// Generate returns exactly count questions for the given role and level.
// A model reply with the wrong number of questions, or with blank entries,
// is rejected as schema-invalid rather than passed through.
func (s GenerateService) Generate(ctx domain.Context, jobRole, experienceLevel string, count int) ([]string, error) {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" {
		return nil, fmt.Errorf("%w: jobRole required", domain.ErrInvalidArgument)
	}
	if experienceLevel == "" {
		experienceLevel = domain.DefaultLevel
	}
	if count <= 0 {
		count = DefaultQuestionCount
	}

	key := cacheKey(jobRole, experienceLevel, count)
	if s.Cache != nil {
		if qs, err := s.Cache.Get(ctx, key); err == nil {
			observability.QuestionCacheHitsTotal.WithLabelValues("hit").Inc()
			return qs, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			// Cache trouble must not block generation.
			slog.Warn("question cache get failed", slog.Any("error", err))
		}
		observability.QuestionCacheHitsTotal.WithLabelValues("miss").Inc()
	}

	prompt, err := s.Prompts.Generation(jobRole, experienceLevel, count)
	if err != nil {
		return nil, err
	}
	raw, err := s.AI.GenerateContent(ctx, prompt, s.Cfg.GeminiMaxOutputTokens)
	if err != nil {
		return nil, err
	}
	qs, err := ai.DecodeQuestionList(raw)
	if err != nil {
		return nil, err
	}
	if len(qs) != count {
		return nil, fmt.Errorf("%w: model returned %d questions, want %d", domain.ErrSchemaInvalid, len(qs), count)
	}
	for i, q := range qs {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("%w: question %d is empty", domain.ErrSchemaInvalid, i)
		}
	}
	observability.QuestionsGeneratedTotal.Add(float64(count))

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, qs); err != nil {
			slog.Warn("question cache set failed", slog.Any("error", err))
		}
	}
	return qs, nil
}

func cacheKey(jobRole, experienceLevel string, count int) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(jobRole), strings.ToLower(experienceLevel), count)
}
