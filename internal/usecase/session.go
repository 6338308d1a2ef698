package usecase

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// SessionService aggregates per-question evaluations into one interview
// session record and persists it.
type SessionService struct {
	Interviews domain.InterviewRepository
}

// NewSessionService constructs a SessionService with its dependencies.
func NewSessionService(interviews domain.InterviewRepository) SessionService {
	return SessionService{Interviews: interviews}
}

// AggregateScore returns the rounded mean of the evaluation scores, or 0
// when there are none. Scores outside [0,100] are treated as malformed and
// discarded so one bad item cannot sink the whole session save.
func AggregateScore(evals []domain.Evaluation) int {
	sum, n := 0, 0
	for _, ev := range evals {
		if ev.Score < 0 || ev.Score > 100 {
			continue
		}
		sum += ev.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// AggregateTopics returns the deduplicated union of relevant keywords
// across evaluations, in first-seen order. Topic scores stay 0: per-topic
// scoring was never wired up and inventing a formula here would be worse
// than admitting the gap.
func AggregateTopics(evals []domain.Evaluation) []domain.Topic {
	seen := make(map[string]struct{})
	topics := make([]domain.Topic, 0)
	for _, ev := range evals {
		for _, kw := range ev.KeywordAnalysis.Relevant {
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			topics = append(topics, domain.Topic{Name: kw, Score: 0})
		}
	}
	return topics
}

// Save validates and persists a completed session. The session score is
// recomputed server-side from the response records so the stored value is
// always the rounded mean; topics are derived the same way when the client
// did not aggregate them.
func (s SessionService) Save(ctx domain.Context, iv domain.Interview) (domain.Interview, error) {
	if iv.UserID == "" {
		return domain.Interview{}, fmt.Errorf("%w: user required", domain.ErrInvalidArgument)
	}
	if iv.JobRole == "" || iv.ExperienceLevel == "" || len(iv.Questions) == 0 || len(iv.Responses) == 0 {
		return domain.Interview{}, fmt.Errorf("%w: missing required fields", domain.ErrInvalidArgument)
	}
	if len(iv.Responses) != len(iv.Questions) {
		return domain.Interview{}, fmt.Errorf("%w: responses/questions length mismatch (%d != %d)",
			domain.ErrInvalidArgument, len(iv.Responses), len(iv.Questions))
	}

	// Aggregate before sanitizing: a malformed score is discarded from the
	// mean, then zeroed in the stored record.
	evals := make([]domain.Evaluation, len(iv.Responses))
	for i := range iv.Responses {
		evals[i] = iv.Responses[i].Evaluation
	}
	iv.Score = AggregateScore(evals)
	if iv.Topics == nil {
		iv.Topics = AggregateTopics(evals)
	}
	for i := range iv.Responses {
		iv.Responses[i].Evaluation = sanitizeEvaluation(iv.Responses[i].Evaluation)
	}

	saved, err := s.Interviews.Save(ctx, iv)
	if err != nil {
		return domain.Interview{}, err
	}
	observability.InterviewsSavedTotal.Inc()
	return saved, nil
}

// ListByUser returns all sessions owned by userID in insertion order.
func (s SessionService) ListByUser(ctx domain.Context, userID string) ([]domain.Interview, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user required", domain.ErrInvalidArgument)
	}
	return s.Interviews.ListByUser(ctx, userID)
}

// sanitizeEvaluation defaults nil slices and clamps malformed scores so a
// partially filled record still persists cleanly.
func sanitizeEvaluation(ev domain.Evaluation) domain.Evaluation {
	if ev.Strengths == nil {
		ev.Strengths = []string{}
	}
	if ev.Weaknesses == nil {
		ev.Weaknesses = []string{}
	}
	if ev.Suggestions == nil {
		ev.Suggestions = []string{}
	}
	if ev.KeywordAnalysis.Relevant == nil {
		ev.KeywordAnalysis.Relevant = []string{}
	}
	if ev.KeywordAnalysis.Irrelevant == nil {
		ev.KeywordAnalysis.Irrelevant = []string{}
	}
	if ev.Score < 0 || ev.Score > 100 {
		ev.Score = 0
	}
	return ev
}
