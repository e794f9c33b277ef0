// Package validate scores generated content against syntax, realism, and
// security rules. Validators are pure functions of (content, metadata) so each
// layer is independently unit-testable; the pipeline composes them and applies
// the conservative minimum-score aggregate.
package validate

import (
	"decoyforge/internal/logging"
	"decoyforge/internal/metrics"
	"decoyforge/internal/token"
)

// Validator names reported in results.
const (
	ValidatorSyntax   = "syntax"
	ValidatorRealism  = "realism"
	ValidatorSecurity = "security"
)

// Result is one validator's verdict on a piece of content.
type Result struct {
	Validator  string   `json:"validator"`
	Passed     bool     `json:"passed"`
	Score      float64  `json:"score"` // [0,1]
	Violations []string `json:"violations,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// ExpectedToken declares the honeytoken deliberately embedded in the content,
// if any. The security validator exempts exactly this value and verifies its
// canonical format.
type ExpectedToken struct {
	Type  token.Type
	Value string
}

// Meta carries the declared identity of the content under validation.
type Meta struct {
	// ContentType: source-code, config, log, document, honeytoken
	ContentType string
	// FileType: python, javascript, shell, go, yaml, json, nginx, generic, ...
	FileType string
	// Expected is the deliberately planted honeytoken, if any.
	Expected *ExpectedToken
}

// Report is the aggregate verdict across all validators in the pipeline.
type Report struct {
	Results  []Result `json:"results"`
	MinScore float64  `json:"min_score"`
	Rejected bool     `json:"rejected"`
}

// Scores returns per-validator scores keyed by validator name.
func (r *Report) Scores() map[string]float64 {
	out := make(map[string]float64, len(r.Results))
	for _, res := range r.Results {
		out[res.Validator] = res.Score
	}
	return out
}

// Violations flattens every violation across validators.
func (r *Report) Violations() []string {
	var out []string
	for _, res := range r.Results {
		out = append(out, res.Violations...)
	}
	return out
}

// Pipeline chains the syntax, realism, and security validators.
type Pipeline struct {
	// Threshold is the minimum acceptable aggregate score (default 0.7).
	Threshold float64
}

// NewPipeline returns a pipeline with the given realism threshold.
func NewPipeline(threshold float64) *Pipeline {
	return &Pipeline{Threshold: threshold}
}

// Run validates content through every layer. The aggregate score is the
// minimum across validators; the report is rejected when any validator hard
// fails or the aggregate score falls below the threshold.
func (p *Pipeline) Run(content string, meta Meta) *Report {
	results := []Result{
		Syntax(content, meta),
		Realism(content, meta),
		Security(content, meta),
	}

	minScore := 1.0
	rejected := false
	for _, res := range results {
		if res.Score < minScore {
			minScore = res.Score
		}
		if !res.Passed {
			rejected = true
			metrics.ValidationFailures.WithLabelValues(res.Validator).Inc()
		}
	}
	if minScore < p.Threshold {
		rejected = true
	}

	logging.ValidationDebug("pipeline: type=%s/%s min=%.2f rejected=%v",
		meta.ContentType, meta.FileType, minScore, rejected)

	return &Report{Results: results, MinScore: minScore, Rejected: rejected}
}
