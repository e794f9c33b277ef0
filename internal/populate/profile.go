// Package populate drives a profile through the content generator and
// deploys the results to a decoy filesystem with believable permissions and
// timestamps.
package populate

import (
	"fmt"
	"path"
	"strings"

	"decoyforge/internal/generate"
	"decoyforge/internal/token"
)

// Entry is one file a profile asks for.
type Entry struct {
	// Path is relative to the decoy root.
	Path string `yaml:"path"`
	// ContentType: source-code, config, log, document, honeytoken
	ContentType string `yaml:"content_type"`
	// FileType refines the content type for generation and validation.
	FileType string `yaml:"file_type,omitempty"`
	// Class selects permission bits from the permission table.
	Class string `yaml:"class"`
	// Purpose is free-form context for the prompt.
	Purpose string `yaml:"purpose,omitempty"`
	// TokenType is required when ContentType is honeytoken.
	TokenType token.Type `yaml:"token_type,omitempty"`
	// After names an earlier entry this file must postdate on disk, e.g. a
	// log postdating the script that produced it.
	After string `yaml:"after,omitempty"`
}

// Profile is a declarative list of files for one kind of decoy.
type Profile struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Files       []Entry `yaml:"files"`
}

// Validate checks structural soundness before any generation happens.
// After references must point at an earlier entry, which rules out cycles.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	if len(p.Files) == 0 {
		return fmt.Errorf("profile %s has no files", p.Name)
	}

	seen := make(map[string]bool, len(p.Files))
	for i, e := range p.Files {
		if e.Path == "" {
			return fmt.Errorf("profile %s: entry %d has no path", p.Name, i)
		}
		if !safeRelPath(e.Path) {
			return fmt.Errorf("profile %s: path %q escapes the decoy root", p.Name, e.Path)
		}
		if seen[e.Path] {
			return fmt.Errorf("profile %s: duplicate path %q", p.Name, e.Path)
		}

		switch e.ContentType {
		case generate.ContentSourceCode, generate.ContentConfig, generate.ContentLog, generate.ContentDocument:
		case generate.ContentHoneytoken:
			if !e.TokenType.Valid() {
				return fmt.Errorf("profile %s: %s needs a valid token_type, got %q", p.Name, e.Path, e.TokenType)
			}
		default:
			return fmt.Errorf("profile %s: %s has unknown content_type %q", p.Name, e.Path, e.ContentType)
		}

		if e.After != "" {
			if !seen[e.After] {
				return fmt.Errorf("profile %s: %s postdates %q which is not an earlier entry", p.Name, e.Path, e.After)
			}
		}
		seen[e.Path] = true
	}
	return nil
}

// safeRelPath rejects absolute paths and parent traversal.
func safeRelPath(p string) bool {
	if strings.HasPrefix(p, "/") {
		return false
	}
	clean := path.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, "../") && clean != "."
}
