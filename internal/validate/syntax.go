package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"gopkg.in/yaml.v3"
)

// Syntax parses content with the grammar appropriate to its declared file
// type. Source languages go through tree-sitter; structured configs through
// their codecs; logs and documents through a printable-text check.
// A parse error is a hard fail.
func Syntax(content string, meta Meta) Result {
	switch meta.FileType {
	case "python":
		return parseTreeSitter(content, python.GetLanguage(), "python")
	case "javascript":
		return parseTreeSitter(content, javascript.GetLanguage(), "javascript")
	case "shell", "bash":
		return parseTreeSitter(content, bash.GetLanguage(), "shell")
	case "go":
		return parseTreeSitter(content, golang.GetLanguage(), "go")
	case "yaml", "docker-compose":
		return syntaxYAML(content)
	case "json":
		return syntaxJSON(content)
	case "nginx":
		return syntaxNginx(content)
	default:
		return syntaxGeneric(content)
	}
}

func parseTreeSitter(content string, lang *sitter.Language, name string) Result {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(content))
	if err != nil {
		return Result{
			Validator:  ValidatorSyntax,
			Passed:     false,
			Score:      0,
			Violations: []string{fmt.Sprintf("%s parse failed: %v", name, err)},
		}
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return Result{
			Validator:  ValidatorSyntax,
			Passed:     false,
			Score:      0,
			Violations: []string{fmt.Sprintf("%s syntax error at %s", name, firstErrorNode(tree.RootNode()))},
		}
	}

	return Result{Validator: ValidatorSyntax, Passed: true, Score: 1.0}
}

// firstErrorNode walks to the first ERROR node for a usable position report.
func firstErrorNode(node *sitter.Node) string {
	if node.Type() == "ERROR" {
		p := node.StartPoint()
		return fmt.Sprintf("line %d, column %d", p.Row+1, p.Column+1)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() {
			return firstErrorNode(child)
		}
	}
	p := node.StartPoint()
	return fmt.Sprintf("line %d", p.Row+1)
}

func syntaxYAML(content string) Result {
	var out interface{}
	if err := yaml.Unmarshal([]byte(content), &out); err != nil {
		return Result{
			Validator:  ValidatorSyntax,
			Passed:     false,
			Score:      0,
			Violations: []string{fmt.Sprintf("yaml syntax error: %v", err)},
		}
	}
	var warnings []string
	if strings.Contains(content, "\t") {
		warnings = append(warnings, "yaml uses tab indentation")
	}
	return Result{Validator: ValidatorSyntax, Passed: true, Score: 1.0, Warnings: warnings}
}

func syntaxJSON(content string) Result {
	if !json.Valid([]byte(content)) {
		return Result{
			Validator:  ValidatorSyntax,
			Passed:     false,
			Score:      0,
			Violations: []string{"invalid json"},
		}
	}
	return Result{Validator: ValidatorSyntax, Passed: true, Score: 1.0}
}

// syntaxNginx applies structural checks: balanced braces and terminated
// directives. There is no full grammar; unterminated lines are warnings.
func syntaxNginx(content string) Result {
	var violations, warnings []string

	if strings.Count(content, "{") != strings.Count(content, "}") {
		violations = append(violations, "unbalanced braces")
	}
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasSuffix(line, "{") && !strings.HasSuffix(line, "}") && !strings.HasSuffix(line, ";") {
			warnings = append(warnings, fmt.Sprintf("line %d may be missing semicolon", i+1))
		}
	}
	if !strings.Contains(content, "server") && !strings.Contains(content, "http") {
		warnings = append(warnings, "no server or http block found")
	}

	passed := len(violations) == 0
	score := 1.0
	if !passed {
		score = 0
	}
	return Result{Validator: ValidatorSyntax, Passed: passed, Score: score, Violations: violations, Warnings: warnings}
}

// syntaxGeneric accepts any non-empty printable text. Used for logs,
// documents, shell history, and credential files.
func syntaxGeneric(content string) Result {
	if len(content) == 0 {
		return Result{
			Validator:  ValidatorSyntax,
			Passed:     false,
			Score:      0,
			Violations: []string{"empty content"},
		}
	}
	for _, r := range content {
		if r == unicode.ReplacementChar || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
			return Result{
				Validator:  ValidatorSyntax,
				Passed:     false,
				Score:      0,
				Violations: []string{fmt.Sprintf("non-printable character %q in content", r)},
			}
		}
	}
	return Result{Validator: ValidatorSyntax, Passed: true, Score: 1.0}
}
