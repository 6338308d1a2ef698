// Package domain holds the core entities and ports of the interview coach.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInternal          = errors.New("internal error")
)

// Experience levels accepted for interview setup and evaluation framing.
const (
	LevelEntry  = "entry"
	LevelMid    = "mid"
	LevelSenior = "senior"

	// DefaultLevel is used when neither the request nor the user profile
	// carries an experience level.
	DefaultLevel = "mid-level"
)

// User is an account that owns interview sessions.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	ExperienceLevel string
	JobRoles        []string
	CreatedAt       time.Time
}

// KeywordAnalysis splits the vocabulary of an answer into terms that support
// it and terms that dilute it.
type KeywordAnalysis struct {
	Relevant   []string
	Irrelevant []string
}

// Evaluation is the structured feedback produced for a single answer.
// Immutable once returned; Score is an integer in [0,100] after coercion.
type Evaluation struct {
	Score           int
	Strengths       []string
	Weaknesses      []string
	Suggestions     []string
	KeywordAnalysis KeywordAnalysis
}

// EvaluationRecord is an Evaluation with the original question and answer
// echoed back, plus the time the evaluation was produced.
type EvaluationRecord struct {
	Evaluation
	Question    string
	Answer      string
	EvaluatedAt time.Time
}

// ResponseRecord is one answered question inside a stored interview.
// Ordering follows question order.
type ResponseRecord struct {
	Evaluation
	Question string
	Answer   string
}

// Topic is a relevant keyword surfaced on the dashboard. Score is stored but
// never computed; it stays 0 until per-topic scoring lands.
type Topic struct {
	Name  string
	Score float64
}

// Interview is one completed mock-interview session owned by a single user.
// Invariant at persistence time: len(Responses) == len(Questions).
type Interview struct {
	ID              string
	UserID          string
	JobRole         string
	ExperienceLevel string
	Questions       []string
	Responses       []ResponseRecord
	Score           int
	Topics          []Topic
	CreatedAt       time.Time
}

// Repositories (ports)

type UserRepository interface {
	Create(ctx Context, u User) (string, error)
	GetByEmail(ctx Context, email string) (User, error)
	GetByID(ctx Context, id string) (User, error)
}

type InterviewRepository interface {
	Save(ctx Context, iv Interview) (Interview, error)
	ListByUser(ctx Context, userID string) ([]Interview, error)
}

// AIClient (port)

type AIClient interface {
	// GenerateContent sends a single prompt to the generative model and
	// returns its raw textual reply. maxTokens bounds the output length.
	GenerateContent(ctx Context, prompt string, maxTokens int) (string, error)
}

// QuestionCache (port) caches generated question sets to spare model quota.
// Get returns ErrNotFound on a miss.
type QuestionCache interface {
	Get(ctx Context, key string) ([]string, error)
	Set(ctx Context, key string, questions []string) error
}

// Context is an alias so the domain layer stays free of direct adapter
// imports; adapters pass context.Context straight through.
type Context = context.Context
