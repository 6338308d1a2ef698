package ai

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/fairyhunter13/ai-interview-coach/internal/config"
)

// defaultEvaluationTemplate frames the model as an interview coach and pins
// the exact JSON shape the normalizer expects back.
const defaultEvaluationTemplate = `
[ROLE]
You are an expert interview coach analyzing a technical interview response.
The candidate is applying for a {{.ExperienceLevel}} position.

[INSTRUCTIONS]
1. Analyze the response for technical accuracy and communication skills
2. Identify key strengths and areas for improvement
3. Score the response from 0-100 considering experience level
4. Provide actionable suggestions
5. Analyze keywords

[RESPONSE FORMAT]
{
  "strengths": ["3 concise bullet points"],
  "weaknesses": ["3 concise bullet points"],
  "score": "number 0-100",
  "suggestions": ["3 actionable items"],
  "keywordAnalysis": {
    "relevant": ["top 5 technical terms"],
    "irrelevant": ["top 5 filler/unrelated words"]
  }
}

[QUESTION]
{{.Question}}

[CANDIDATE RESPONSE]
{{.Answer}}
`

const defaultGenerationTemplate = `Generate exactly {{.Count}} technical interview questions for a {{.ExperienceLevel}} {{.JobRole}} position.
Respond with a JSON array of exactly {{.Count}} question strings and nothing else:
["question1", "question2", ...]`

// PromptBuilder renders evaluation and generation prompts. Templates can be
// overridden via a YAML prompts file; see config.LoadPromptConfig.
type PromptBuilder struct {
	evalTmpl *template.Template
	genTmpl  *template.Template
}

type evaluationData struct {
	Question        string
	Answer          string
	ExperienceLevel string
}

type generationData struct {
	JobRole         string
	ExperienceLevel string
	Count           int
}

// NewPromptBuilder constructs a PromptBuilder, applying any non-empty
// overrides on top of the built-in templates.
func NewPromptBuilder(overrides config.PromptConfig) (*PromptBuilder, error) {
	evalText := defaultEvaluationTemplate
	if overrides.Evaluation != "" {
		evalText = overrides.Evaluation
	}
	genText := defaultGenerationTemplate
	if overrides.Generation != "" {
		genText = overrides.Generation
	}
	evalTmpl, err := template.New("evaluation").Parse(evalText)
	if err != nil {
		return nil, fmt.Errorf("op=prompt.parse_evaluation: %w", err)
	}
	genTmpl, err := template.New("generation").Parse(genText)
	if err != nil {
		return nil, fmt.Errorf("op=prompt.parse_generation: %w", err)
	}
	return &PromptBuilder{evalTmpl: evalTmpl, genTmpl: genTmpl}, nil
}

// Evaluation renders the grading prompt for one (question, answer) pair.
// Pure templating; no validation happens here.
func (b *PromptBuilder) Evaluation(question, answer, experienceLevel string) (string, error) {
	var sb strings.Builder
	data := evaluationData{Question: question, Answer: answer, ExperienceLevel: experienceLevel}
	if err := b.evalTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("op=prompt.evaluation: %w", err)
	}
	return sb.String(), nil
}

// Generation renders the question-generation prompt.
func (b *PromptBuilder) Generation(jobRole, experienceLevel string, count int) (string, error) {
	var sb strings.Builder
	data := generationData{JobRole: jobRole, ExperienceLevel: experienceLevel, Count: count}
	if err := b.genTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("op=prompt.generation: %w", err)
	}
	return sb.String(), nil
}
