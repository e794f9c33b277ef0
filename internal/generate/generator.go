package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"decoyforge/internal/config"
	"decoyforge/internal/llm"
	"decoyforge/internal/logging"
	"decoyforge/internal/metrics"
	"decoyforge/internal/store"
	"decoyforge/internal/token"
	"decoyforge/internal/validate"
)

// Generator produces one validated artifact per request.
type Generator struct {
	client   llm.Client
	pipeline *validate.Pipeline
	store    *store.Store
	cfg      config.GenerationConfig
}

// New builds a generator. The store is used for honeytoken minting and the
// per-attempt generation log.
func New(client llm.Client, s *store.Store, cfg config.GenerationConfig) *Generator {
	return &Generator{
		client:   client,
		pipeline: validate.NewPipeline(cfg.RealismThreshold),
		store:    s,
		cfg:      cfg,
	}
}

// Generate runs the request to an accepted artifact or a terminal error.
// Honeytoken requests never touch the provider; everything else loops
// through generate-validate with rising temperature until validation accepts
// or the attempt budget runs out.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ContentType == ContentHoneytoken {
		return g.generateHoneytoken(ctx, req)
	}
	return g.generateWithProvider(ctx, req)
}

func (g *Generator) generateWithProvider(ctx context.Context, req Request) (*Result, error) {
	generationID := uuid.NewString()
	system := SystemPrompt(req.ContentType)
	user := BuildPrompt(req, req.Context.Slots())
	promptHash := PromptHash(system, user)

	maxAttempts := g.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastReport *validate.Report
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		temp := g.temperature(attempt)
		start := time.Now()

		resp, err := g.client.Complete(ctx, llm.Request{
			System:      system,
			Prompt:      user,
			Temperature: temp,
			MaxTokens:   g.cfg.MaxTokens,
		})
		if err != nil {
			g.logAttempt(ctx, req, generationID, attempt, promptHash, "", temp, nil,
				[]string{"provider: " + err.Error()}, time.Since(start))
			metrics.GenerationAttempts.WithLabelValues(req.ContentType, "provider_error").Inc()
			return nil, err
		}

		content := stripFences(resp.Text)
		report := g.pipeline.Run(content, validate.Meta{
			ContentType: req.ContentType,
			FileType:    req.FileType,
		})
		g.logAttempt(ctx, req, generationID, attempt, promptHash, resp.Model, temp, report,
			report.Violations(), time.Since(start))

		if !report.Rejected {
			metrics.GenerationAttempts.WithLabelValues(req.ContentType, "accepted").Inc()
			logging.Generator("accepted %s after %d attempt(s), score %.2f", req.Path, attempt, report.MinScore)
			return &Result{Content: content, Report: report, Attempts: attempt, Model: resp.Model}, nil
		}

		metrics.GenerationAttempts.WithLabelValues(req.ContentType, "rejected").Inc()
		logging.Generator("rejected %s attempt %d/%d, score %.2f", req.Path, attempt, maxAttempts, report.MinScore)
		lastReport = report
	}

	return nil, &ValidationExhaustedError{Path: req.Path, Attempts: maxAttempts, LastReport: lastReport}
}

// generateHoneytoken mints a ledger record and renders it locally. The
// canonical-format and embedding checks still run; realism scoring does not
// apply to credential material, so only hard failures reject.
func (g *Generator) generateHoneytoken(ctx context.Context, req Request) (*Result, error) {
	generationID := uuid.NewString()
	start := time.Now()

	rec, err := g.store.Mint(ctx, req.TokenType, token.Location{
		DecoyID: req.Context.DecoyID,
		Path:    req.Path,
		JobID:   req.Context.JobID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mint honeytoken: %w", err)
	}

	content, err := renderHoneytoken(rec, req.Context)
	if err != nil {
		g.discardToken(ctx, rec.ID)
		return nil, err
	}

	report := validate.NewPipeline(0).Run(content, validate.Meta{
		ContentType: ContentHoneytoken,
		FileType:    "generic",
		Expected:    &validate.ExpectedToken{Type: rec.Type, Value: rec.Value},
	})
	g.logAttempt(ctx, req, generationID, 1, "", "", 0, report, report.Violations(), time.Since(start))

	if report.Rejected {
		g.discardToken(ctx, rec.ID)
		metrics.GenerationAttempts.WithLabelValues(req.ContentType, "rejected").Inc()
		return nil, &ValidationExhaustedError{Path: req.Path, Attempts: 1, LastReport: report}
	}

	req.Context.RecordToken(rec.ID)
	metrics.GenerationAttempts.WithLabelValues(req.ContentType, "accepted").Inc()
	logging.Generator("minted %s honeytoken for %s (id=%s)", rec.Type, req.Path, rec.ID)
	return &Result{Content: content, Token: rec, Report: report, Attempts: 1}, nil
}

// discardToken deactivates a record whose content never shipped.
func (g *Generator) discardToken(ctx context.Context, id string) {
	if err := g.store.Deactivate(ctx, id); err != nil {
		logging.Generator("failed to deactivate discarded token %s: %v", id, err)
	}
}

// temperature rises with each retry so regenerations explore instead of
// reproducing the rejected output.
func (g *Generator) temperature(attempt int) float64 {
	t := g.cfg.BaseTemperature + g.cfg.TemperatureStep*float64(attempt-1)
	if t > 1.0 {
		t = 1.0
	}
	return t
}

func (g *Generator) logAttempt(ctx context.Context, req Request, generationID string, attempt int,
	promptHash, model string, temp float64, report *validate.Report, rejections []string, elapsed time.Duration) {

	entry := store.GenerationLogEntry{
		GenerationID: generationID,
		ContentType:  req.ContentType,
		FileType:     req.FileType,
		DecoyID:      req.Context.DecoyID,
		JobID:        req.Context.JobID,
		Attempt:      attempt,
		PromptHash:   promptHash,
		Model:        model,
		Temperature:  temp,
		Rejections:   rejections,
		Duration:     elapsed,
	}
	if report != nil {
		entry.MinScore = report.MinScore
		entry.Accepted = !report.Rejected
	}
	if err := g.store.AppendGenerationLog(ctx, entry); err != nil {
		logging.Generator("failed to append generation log for %s: %v", req.Path, err)
	}
}

// stripFences removes a surrounding markdown code fence when the model adds
// one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return s
}
