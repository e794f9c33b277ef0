// Package generate turns one content request into a validated artifact,
// retrying generation with increased randomness when validation rejects the
// output. Honeytoken-typed requests are rendered locally and minted into the
// ledger; everything else goes through the provider.
package generate

import (
	"fmt"

	"decoyforge/internal/consistency"
	"decoyforge/internal/token"
	"decoyforge/internal/validate"
)

// Content types.
const (
	ContentSourceCode = "source-code"
	ContentConfig     = "config"
	ContentLog        = "log"
	ContentDocument   = "document"
	ContentHoneytoken = "honeytoken"
)

// Request describes one artifact to produce. Immutable once constructed.
type Request struct {
	// ContentType: source-code, config, log, document, honeytoken
	ContentType string
	// FileType refines the content type: python, shell, yaml, nginx, ...
	FileType string
	// Path is the target path inside the decoy filesystem.
	Path string
	// Purpose is a free-form description fed to the prompt.
	Purpose string
	// TokenType selects the credential format for honeytoken requests.
	TokenType token.Type
	// Context is the owning job's consistency context.
	Context *consistency.Context
}

// Validate rejects malformed requests before any provider call.
func (r Request) Validate() error {
	switch r.ContentType {
	case ContentSourceCode, ContentConfig, ContentLog, ContentDocument:
	case ContentHoneytoken:
		if !r.TokenType.Valid() {
			return fmt.Errorf("honeytoken request needs a valid token type, got %q", r.TokenType)
		}
	default:
		return fmt.Errorf("unknown content type %q", r.ContentType)
	}
	if r.Context == nil {
		return fmt.Errorf("request has no consistency context")
	}
	if r.Path == "" {
		return fmt.Errorf("request has no target path")
	}
	return nil
}

// Result is one accepted artifact.
type Result struct {
	Content  string
	Token    *token.Record // set for honeytoken requests
	Report   *validate.Report
	Attempts int
	Model    string
}

// ValidationExhaustedError reports that content never passed validation
// within the attempt budget. It carries the last report so callers can see
// why.
type ValidationExhaustedError struct {
	Path       string
	Attempts   int
	LastReport *validate.Report
}

func (e *ValidationExhaustedError) Error() string {
	reasons := ""
	if e.LastReport != nil {
		for _, v := range e.LastReport.Violations() {
			if reasons != "" {
				reasons += "; "
			}
			reasons += v
		}
	}
	if reasons == "" {
		reasons = "score below threshold"
	}
	return fmt.Sprintf("validation exhausted after %d attempts for %s: %s", e.Attempts, e.Path, reasons)
}
