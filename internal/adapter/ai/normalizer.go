// Package ai provides prompt construction and response normalization for
// the generative model. The model's textual output is not guaranteed to be
// valid JSON, so decoding runs behind an ordered sequence of repair passes.
package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

var (
	fenceRe = regexp.MustCompile("```(?:json)?")
	// Line comments only when preceded by start-of-line or whitespace so
	// "https://" inside string values survives.
	lineCommentRe = regexp.MustCompile(`(?m)(^|\s)//[^\n]*`)
	trailingSepRe = regexp.MustCompile(`,(\s*[}\]])`)
	undefinedRe   = regexp.MustCompile(`\bundefined\b`)
	nullRe        = regexp.MustCompile(`\bnull\b`)
	leadingIntRe  = regexp.MustCompile(`^-?\d+`)
)

// StripCodeFences removes Markdown code-fence markers.
func StripCodeFences(s string) string {
	return fenceRe.ReplaceAllString(s, "")
}

// StripLineComments removes // comments the model sometimes annotates
// fields with.
func StripLineComments(s string) string {
	return lineCommentRe.ReplaceAllString(s, "$1")
}

// StripTrailingSeparators removes trailing commas before closing braces
// and brackets.
func StripTrailingSeparators(s string) string {
	return trailingSepRe.ReplaceAllString(s, "$1")
}

// ReplaceSentinelTokens substitutes bare undefined/null tokens with empty
// strings. Lossy but parseable beats a hard failure here.
func ReplaceSentinelTokens(s string) string {
	s = undefinedRe.ReplaceAllString(s, `""`)
	return nullRe.ReplaceAllString(s, `""`)
}

// Normalize applies all repair passes in order and trims the result.
// Idempotent on text that is already valid JSON without sentinel tokens.
func Normalize(s string) string {
	s = StripCodeFences(s)
	s = StripLineComments(s)
	s = StripTrailingSeparators(s)
	s = ReplaceSentinelTokens(s)
	return strings.TrimSpace(s)
}

// ParseError is returned when a model reply cannot be repaired into valid
// structured data. The raw reply is retained for diagnostics and never
// exposed to end users in production mode.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v\nraw response: %s", e.Err, e.Raw)
}

// Unwrap classifies every parse failure as a schema-invalid upstream error.
func (e *ParseError) Unwrap() error { return domain.ErrSchemaInvalid }

// evaluationPayload mirrors the JSON shape the evaluation prompt requests.
// Score is decoded loosely; models frequently return it as a quoted string.
// Array-valued fields stay raw so a sentinel-substituted "" (or any other
// non-array value) degrades to an empty list instead of a decode failure.
type evaluationPayload struct {
	Strengths       json.RawMessage `json:"strengths"`
	Weaknesses      json.RawMessage `json:"weaknesses"`
	Score           any             `json:"score"`
	Suggestions     json.RawMessage `json:"suggestions"`
	KeywordAnalysis json.RawMessage `json:"keywordAnalysis"`
}

type keywordPayload struct {
	Relevant   json.RawMessage `json:"relevant"`
	Irrelevant json.RawMessage `json:"irrelevant"`
}

// DecodeEvaluation repairs and decodes a model reply into an Evaluation.
// Only a top-level shape that is not a JSON object fails, surfacing as
// *ParseError; malformed individual fields are decoded lossily.
func DecodeEvaluation(raw string) (domain.Evaluation, error) {
	cleaned := Normalize(raw)
	var p evaluationPayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return domain.Evaluation{}, &ParseError{Raw: raw, Err: err}
	}
	ev := domain.Evaluation{
		Score:           CoerceScore(p.Score),
		Strengths:       decodeStringList(p.Strengths),
		Weaknesses:      decodeStringList(p.Weaknesses),
		Suggestions:     decodeStringList(p.Suggestions),
		KeywordAnalysis: decodeKeywordAnalysis(p.KeywordAnalysis),
	}
	return ev, nil
}

// decodeStringList decodes a JSON string array, treating anything else
// (missing field, sentinel-substituted "", wrong type) as an empty list.
func decodeStringList(raw json.RawMessage) []string {
	var out []string
	if len(raw) == 0 || json.Unmarshal(raw, &out) != nil {
		return []string{}
	}
	return emptyIfNil(out)
}

func decodeKeywordAnalysis(raw json.RawMessage) domain.KeywordAnalysis {
	var p keywordPayload
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return domain.KeywordAnalysis{Relevant: []string{}, Irrelevant: []string{}}
	}
	return domain.KeywordAnalysis{
		Relevant:   decodeStringList(p.Relevant),
		Irrelevant: decodeStringList(p.Irrelevant),
	}
}

// DecodeQuestionList repairs and decodes a model reply into a flat list of
// question strings.
func DecodeQuestionList(raw string) ([]string, error) {
	cleaned := Normalize(raw)
	var qs []string
	if err := json.Unmarshal([]byte(cleaned), &qs); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return qs, nil
}

// CoerceScore converts a loosely typed score value to an int clamped to
// [0,100]. Numeric strings like "85" are accepted; anything unparseable
// scores 0.
func CoerceScore(v any) int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(math.Round(t))
	case int:
		n = t
	case string:
		s := strings.TrimSpace(t)
		parsed, err := strconv.Atoi(s)
		if err != nil {
			// Mimic lenient integer parsing: take a leading integer prefix
			// from strings like "85/100".
			m := leadingIntRe.FindString(s)
			if m == "" {
				return 0
			}
			parsed, err = strconv.Atoi(m)
			if err != nil {
				return 0
			}
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
