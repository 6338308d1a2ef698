package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// InterviewRepo persists and loads interview sessions from PostgreSQL.
// Sessions are append-only; no update or delete is exposed.
type InterviewRepo struct{ Pool PgxPool }

// NewInterviewRepo constructs an InterviewRepo with the given pool.
func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

// responseRow is the JSONB document shape for one answered question.
type responseRow struct {
	Question        string   `json:"question"`
	Response        string   `json:"response"`
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Suggestions     []string `json:"suggestions"`
	KeywordAnalysis struct {
		Relevant   []string `json:"relevant"`
		Irrelevant []string `json:"irrelevant"`
	} `json:"keywordAnalysis"`
}

type topicRow struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Save inserts a completed session and returns it with identity and
// creation time filled in.
func (r *InterviewRepo) Save(ctx domain.Context, iv domain.Interview) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "interviews"),
	)

	id := iv.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	questions, err := json.Marshal(iv.Questions)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.save: %w", err)
	}
	responses, err := json.Marshal(toResponseRows(iv.Responses))
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.save: %w", err)
	}
	topics, err := json.Marshal(toTopicRows(iv.Topics))
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.save: %w", err)
	}

	q := `INSERT INTO interviews (id, user_id, job_role, experience_level, questions, responses, score, topics, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := r.Pool.Exec(ctx, q, id, iv.UserID, iv.JobRole, iv.ExperienceLevel, questions, responses, iv.Score, topics, now); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.save: %w", err)
	}

	saved := iv
	saved.ID = id
	saved.CreatedAt = now
	return saved, nil
}

// ListByUser returns all sessions owned by userID in insertion order.
func (r *InterviewRepo) ListByUser(ctx domain.Context, userID string) ([]domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.ListByUser")
	defer span.End()

	q := `SELECT id, user_id, job_role, experience_level, questions, responses, score, topics, created_at FROM interviews WHERE user_id=$1 ORDER BY created_at ASC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("op=interview.list: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Interview, 0)
	for rows.Next() {
		var iv domain.Interview
		var questions, responses, topics []byte
		if err := rows.Scan(&iv.ID, &iv.UserID, &iv.JobRole, &iv.ExperienceLevel, &questions, &responses, &iv.Score, &topics, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=interview.list: %w", err)
		}
		if err := json.Unmarshal(questions, &iv.Questions); err != nil {
			return nil, fmt.Errorf("op=interview.list: %w", err)
		}
		var rr []responseRow
		if err := json.Unmarshal(responses, &rr); err != nil {
			return nil, fmt.Errorf("op=interview.list: %w", err)
		}
		iv.Responses = fromResponseRows(rr)
		var tr []topicRow
		if err := json.Unmarshal(topics, &tr); err != nil {
			return nil, fmt.Errorf("op=interview.list: %w", err)
		}
		iv.Topics = fromTopicRows(tr)
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=interview.list: %w", err)
	}
	return out, nil
}

func toResponseRows(in []domain.ResponseRecord) []responseRow {
	out := make([]responseRow, len(in))
	for i, rec := range in {
		row := responseRow{
			Question:    rec.Question,
			Response:    rec.Answer,
			Score:       rec.Score,
			Strengths:   rec.Strengths,
			Weaknesses:  rec.Weaknesses,
			Suggestions: rec.Suggestions,
		}
		row.KeywordAnalysis.Relevant = rec.KeywordAnalysis.Relevant
		row.KeywordAnalysis.Irrelevant = rec.KeywordAnalysis.Irrelevant
		out[i] = row
	}
	return out
}

func fromResponseRows(in []responseRow) []domain.ResponseRecord {
	out := make([]domain.ResponseRecord, len(in))
	for i, row := range in {
		rec := domain.ResponseRecord{
			Question: row.Question,
			Answer:   row.Response,
			Evaluation: domain.Evaluation{
				Score:       row.Score,
				Strengths:   row.Strengths,
				Weaknesses:  row.Weaknesses,
				Suggestions: row.Suggestions,
				KeywordAnalysis: domain.KeywordAnalysis{
					Relevant:   row.KeywordAnalysis.Relevant,
					Irrelevant: row.KeywordAnalysis.Irrelevant,
				},
			},
		}
		out[i] = rec
	}
	return out
}

func toTopicRows(in []domain.Topic) []topicRow {
	out := make([]topicRow, len(in))
	for i, t := range in {
		out[i] = topicRow{Name: t.Name, Score: t.Score}
	}
	return out
}

func fromTopicRows(in []topicRow) []domain.Topic {
	out := make([]domain.Topic, len(in))
	for i, t := range in {
		out[i] = domain.Topic{Name: t.Name, Score: t.Score}
	}
	return out
}
