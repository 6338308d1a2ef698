package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/internal/usecase"
)

// Server bundles the services the HTTP handlers depend on.
type Server struct {
	Cfg      config.Config
	Auth     usecase.AuthService
	Evaluate usecase.EvaluateService
	Generate usecase.GenerateService
	Sessions usecase.SessionService

	// Readiness probes; nil checks are skipped.
	DBPing    func(ctx context.Context) error
	CachePing func(ctx context.Context) error
}

// NewServer constructs a Server.
func NewServer(cfg config.Config, auth usecase.AuthService, eval usecase.EvaluateService, gen usecase.GenerateService, sessions usecase.SessionService) *Server {
	return &Server{Cfg: cfg, Auth: auth, Evaluate: eval, Generate: gen, Sessions: sessions}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// decodeJSON decodes and validates a request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body", domain.ErrInvalidArgument)
	}
	if err := getValidator().Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, err.Error())
	}
	return nil
}

type registerRequest struct {
	Username        string   `json:"username" validate:"required,min=2,max=64"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8,max=128"`
	ExperienceLevel string   `json:"experienceLevel" validate:"omitempty,max=64"`
	JobRoles        []string `json:"jobRoles" validate:"omitempty,dive,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"`
	JobRoles        []string `json:"jobRoles,omitempty"`
}

// RegisterHandler creates an account and returns a fresh token.
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	u, err := s.Auth.Register(r.Context(), domain.User{
		Username:        req.Username,
		Email:           req.Email,
		ExperienceLevel: req.ExperienceLevel,
		JobRoles:        req.JobRoles,
	}, req.Password)
	if err != nil {
		s.writeError(w, r, err, "registration failed")
		return
	}
	token, err := s.issueToken(u)
	if err != nil {
		s.writeError(w, r, err, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// LoginHandler verifies credentials and returns a token.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	u, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err, "login failed")
		return
	}
	token, err := s.issueToken(u)
	if err != nil {
		s.writeError(w, r, err, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// MeHandler returns the authenticated user's profile.
func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	u, err := s.Auth.CurrentUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err, "profile lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		ExperienceLevel: u.ExperienceLevel,
		JobRoles:        u.JobRoles,
	})
}

type generateRequest struct {
	JobRole         string `json:"jobRole" validate:"required,max=128"`
	ExperienceLevel string `json:"experienceLevel" validate:"omitempty,max=64"`
	QuestionCount   int    `json:"questionCount" validate:"omitempty,min=1,max=20"`
}

type questionsResponse struct {
	Questions []string `json:"questions"`
}

// GenerateHandler produces a question set for a role and level.
func (s *Server) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	qs, err := s.Generate.Generate(r.Context(), req.JobRole, req.ExperienceLevel, req.QuestionCount)
	if err != nil {
		s.writeError(w, r, err, "question generation failed")
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: qs})
}

type evaluateRequest struct {
	Question        string `json:"question" validate:"required"`
	Response        string `json:"response" validate:"required"`
	ExperienceLevel string `json:"experienceLevel" validate:"omitempty,max=64"`
}

type keywordAnalysisDTO struct {
	Relevant   []string `json:"relevant"`
	Irrelevant []string `json:"irrelevant"`
}

type evaluationResponse struct {
	Score           int                `json:"score"`
	Strengths       []string           `json:"strengths"`
	Weaknesses      []string           `json:"weaknesses"`
	Suggestions     []string           `json:"suggestions"`
	KeywordAnalysis keywordAnalysisDTO `json:"keywordAnalysis"`
	Question        string             `json:"question"`
	Response        string             `json:"response"`
	EvaluationDate  time.Time          `json:"evaluationDate"`
}

// EvaluateHandler grades a single answer. When the request does not carry an
// experience level the one stored on the user's profile is used.
func (s *Server) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	level := req.ExperienceLevel
	if level == "" {
		if u, err := s.Auth.CurrentUser(r.Context(), UserIDFromContext(r.Context())); err == nil {
			level = u.ExperienceLevel
		}
	}
	rec, err := s.Evaluate.Evaluate(r.Context(), req.Question, req.Response, level)
	if err != nil {
		s.writeError(w, r, err, "AI evaluation failed")
		return
	}
	writeJSON(w, http.StatusOK, evaluationResponse{
		Score:           rec.Score,
		Strengths:       rec.Strengths,
		Weaknesses:      rec.Weaknesses,
		Suggestions:     rec.Suggestions,
		KeywordAnalysis: keywordAnalysisDTO{Relevant: rec.KeywordAnalysis.Relevant, Irrelevant: rec.KeywordAnalysis.Irrelevant},
		Question:        rec.Question,
		Response:        rec.Answer,
		EvaluationDate:  rec.EvaluatedAt,
	})
}

type responseRecordDTO struct {
	Question        string             `json:"question" validate:"required"`
	Response        string             `json:"response" validate:"required"`
	Score           *int               `json:"score" validate:"required"`
	Strengths       []string           `json:"strengths"`
	Weaknesses      []string           `json:"weaknesses"`
	Suggestions     []string           `json:"suggestions"`
	KeywordAnalysis keywordAnalysisDTO `json:"keywordAnalysis"`
}

type topicDTO struct {
	Name  string  `json:"name" validate:"required"`
	Score float64 `json:"score"`
}

type saveInterviewRequest struct {
	JobRole         string              `json:"jobRole" validate:"required,max=128"`
	ExperienceLevel string              `json:"experienceLevel" validate:"required,max=64"`
	Questions       []string            `json:"questions" validate:"required,min=1,dive,required"`
	Responses       []responseRecordDTO `json:"responses" validate:"required,min=1,dive"`
	Topics          []topicDTO          `json:"topics" validate:"omitempty,dive"`
}

type interviewResponse struct {
	ID              string              `json:"id"`
	JobRole         string              `json:"jobRole"`
	ExperienceLevel string              `json:"experienceLevel"`
	Questions       []string            `json:"questions"`
	Responses       []responseRecordDTO `json:"responses"`
	Score           int                 `json:"score"`
	Topics          []topicDTO          `json:"topics"`
	Date            time.Time           `json:"date"`
}

// SaveInterviewHandler persists a completed session for the caller.
func (s *Server) SaveInterviewHandler(w http.ResponseWriter, r *http.Request) {
	var req saveInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	iv := domain.Interview{
		UserID:          UserIDFromContext(r.Context()),
		JobRole:         req.JobRole,
		ExperienceLevel: req.ExperienceLevel,
		Questions:       req.Questions,
		Responses:       make([]domain.ResponseRecord, len(req.Responses)),
	}
	for i, rr := range req.Responses {
		score := 0
		if rr.Score != nil {
			score = *rr.Score
		}
		iv.Responses[i] = domain.ResponseRecord{
			Evaluation: domain.Evaluation{
				Score:       score,
				Strengths:   rr.Strengths,
				Weaknesses:  rr.Weaknesses,
				Suggestions: rr.Suggestions,
				KeywordAnalysis: domain.KeywordAnalysis{
					Relevant:   rr.KeywordAnalysis.Relevant,
					Irrelevant: rr.KeywordAnalysis.Irrelevant,
				},
			},
			Question: rr.Question,
			Answer:   rr.Response,
		}
	}
	if req.Topics != nil {
		iv.Topics = make([]domain.Topic, len(req.Topics))
		for i, t := range req.Topics {
			iv.Topics[i] = domain.Topic{Name: t.Name, Score: t.Score}
		}
	}
	saved, err := s.Sessions.Save(r.Context(), iv)
	if err != nil {
		s.writeError(w, r, err, "failed to save interview")
		return
	}
	writeJSON(w, http.StatusCreated, toInterviewResponse(saved))
}

// ListInterviewsHandler returns all of the caller's sessions, oldest first.
func (s *Server) ListInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	ivs, err := s.Sessions.ListByUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err, "failed to load interviews")
		return
	}
	out := make([]interviewResponse, len(ivs))
	for i, iv := range ivs {
		out[i] = toInterviewResponse(iv)
	}
	writeJSON(w, http.StatusOK, out)
}

func toInterviewResponse(iv domain.Interview) interviewResponse {
	resp := interviewResponse{
		ID:              iv.ID,
		JobRole:         iv.JobRole,
		ExperienceLevel: iv.ExperienceLevel,
		Questions:       iv.Questions,
		Responses:       make([]responseRecordDTO, len(iv.Responses)),
		Score:           iv.Score,
		Topics:          make([]topicDTO, len(iv.Topics)),
		Date:            iv.CreatedAt,
	}
	for i, rr := range iv.Responses {
		score := rr.Score
		resp.Responses[i] = responseRecordDTO{
			Question:    rr.Question,
			Response:    rr.Answer,
			Score:       &score,
			Strengths:   rr.Strengths,
			Weaknesses:  rr.Weaknesses,
			Suggestions: rr.Suggestions,
			KeywordAnalysis: keywordAnalysisDTO{
				Relevant:   rr.KeywordAnalysis.Relevant,
				Irrelevant: rr.KeywordAnalysis.Irrelevant,
			},
		}
	}
	for i, t := range iv.Topics {
		resp.Topics[i] = topicDTO{Name: t.Name, Score: t.Score}
	}
	return resp
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyzHandler reports readiness by probing the database and cache.
func (s *Server) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	checks := map[string]string{}
	ready := true
	if s.DBPing != nil {
		if err := s.DBPing(ctx); err != nil {
			checks["db"] = err.Error()
			ready = false
		} else {
			checks["db"] = "ok"
		}
	}
	if s.CachePing != nil {
		if err := s.CachePing(ctx); err != nil {
			checks["cache"] = err.Error()
			ready = false
		} else {
			checks["cache"] = "ok"
		}
	}
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{"ready": ready, "checks": checks})
}
