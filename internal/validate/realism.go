package validate

import (
	"math"
	"regexp"
	"strings"
)

// Realism scoring weights. The four component scores are combined into a
// weighted average in [0,1].
const (
	weightEntropy      = 0.2
	weightPattern      = 0.3
	weightStructure    = 0.3
	weightAuthenticity = 0.2
)

var (
	pythonDef    = regexp.MustCompile(`\bdef\s+\w+\(`)
	pythonImport = regexp.MustCompile(`\bimport\s+\w+`)
	pythonClass  = regexp.MustCompile(`\bclass\s+\w+`)
	jsFunction   = regexp.MustCompile(`\bfunction\s+\w+\(`)
	jsImport     = regexp.MustCompile(`\brequire\(|import\s+`)
	shellIf      = regexp.MustCompile(`\bif\s+\[`)
	goFunc       = regexp.MustCompile(`\bfunc\s+\w+\(|\bfunc\s+\(`)
	goPackage    = regexp.MustCompile(`(?m)^package\s+\w+`)
	logLine      = regexp.MustCompile(`(?m)^\S+.*\d{2}:\d{2}:\d{2}`)
)

// placeholderTokens are markers of obviously synthetic content. A few are
// realistic in real codebases, so each hit costs only a small penalty.
var placeholderTokens = []string{
	"todo", "fixme", "xxx",
	"placeholder", "example.com",
	"foo", "bar", "baz",
	"test123", "password123",
	"replace_this", "change_me",
	"your_key_here", "insert here",
}

// Realism scores how plausible the content looks for its declared type.
// It hard-fails only on empty content; everything else contributes a score
// that the pipeline threshold judges.
func Realism(content string, meta Meta) Result {
	if strings.TrimSpace(content) == "" {
		return Result{
			Validator:  ValidatorRealism,
			Passed:     false,
			Score:      0,
			Violations: []string{"empty content"},
		}
	}

	entropy := entropyScore(content)
	pattern := patternScore(content, meta.FileType, meta.ContentType)
	structure := structureScore(content)
	authenticity := authenticityScore(content)

	total := entropy*weightEntropy +
		pattern*weightPattern +
		structure*weightStructure +
		authenticity*weightAuthenticity

	var warnings []string
	if total < 0.5 {
		warnings = append(warnings, "content may not be realistic enough")
	}
	if entropy < 0.3 {
		warnings = append(warnings, "low entropy: content may be too repetitive")
	}

	return Result{Validator: ValidatorRealism, Passed: true, Score: total, Warnings: warnings}
}

// shannonEntropy computes character-distribution entropy in bits.
func shannonEntropy(text string) float64 {
	if text == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range text {
		freq[r]++
		total++
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// entropyScore normalizes entropy to [0,1]. Realistic text sits around 3-6 bits.
func entropyScore(content string) float64 {
	return math.Min(shannonEntropy(content)/6.0, 1.0)
}

// patternScore rewards structural cues consistent with the declared type.
func patternScore(content, fileType, contentType string) float64 {
	lines := strings.Count(content, "\n")
	score, checks := 0, 0

	switch fileType {
	case "python":
		checks = 5
		if pythonDef.MatchString(content) {
			score++
		}
		if pythonImport.MatchString(content) {
			score++
		}
		if pythonClass.MatchString(content) || strings.Contains(content, "if __name__") {
			score++
		}
		if containsAny(content, "try:", "except", "with ", "for ", "while ") {
			score++
		}
		if lines > 10 {
			score++
		}
	case "javascript":
		checks = 5
		if jsFunction.MatchString(content) || strings.Contains(content, "=>") {
			score++
		}
		if containsAny(content, "const ", "let ", "var ") {
			score++
		}
		if containsAny(content, "async", "await", "Promise") {
			score++
		}
		if jsImport.MatchString(content) {
			score++
		}
		if lines > 10 {
			score++
		}
	case "shell", "bash":
		checks = 5
		if strings.HasPrefix(content, "#!") {
			score++
		}
		if shellIf.MatchString(content) {
			score++
		}
		if containsAny(content, "echo", "mkdir", "cd ", "cp ", "mv ") {
			score++
		}
		if strings.Contains(content, "$") {
			score++
		}
		if lines > 5 {
			score++
		}
	case "go":
		checks = 4
		if goPackage.MatchString(content) {
			score++
		}
		if goFunc.MatchString(content) {
			score++
		}
		if containsAny(content, "err != nil", "return") {
			score++
		}
		if lines > 10 {
			score++
		}
	case "yaml", "docker-compose":
		checks = 4
		if strings.Contains(content, ":") && lines > 0 {
			score++
		}
		if strings.Contains(content, "\n ") || strings.HasPrefix(content, " ") || strings.HasPrefix(content, "-") {
			score++
		}
		if lines > 5 {
			score++
		}
		if !strings.Contains(content, "\t") {
			score++
		}
	case "nginx":
		checks = 4
		if containsAny(content, "server", "location") {
			score++
		}
		if strings.Contains(content, "{") && strings.Contains(content, "}") {
			score++
		}
		if strings.Contains(content, ";") {
			score++
		}
		if containsAny(content, "listen", "server_name", "root", "proxy_pass") {
			score++
		}
	default:
		if contentType == "log" {
			checks = 3
			if logLine.MatchString(content) {
				score++
			}
			if lines > 5 {
				score++
			}
			if containsAny(content, " INFO ", " WARN ", " ERROR ", "sshd", "GET ", "POST ") {
				score++
			}
			break
		}
		checks = 3
		if lines > 5 {
			score++
		}
		if len(content) > 100 {
			score++
		}
		if strings.TrimSpace(content) != "" {
			score++
		}
	}

	if checks == 0 {
		return 0.5
	}
	return float64(score) / float64(checks)
}

// structureScore rewards formatting that looks human-written.
func structureScore(content string) float64 {
	score := 0.0
	lines := strings.Split(content, "\n")

	if containsAny(content, "#", "//", "/*") {
		score += 0.2
	}

	indented := 0
	empty := 0
	totalLen := 0
	for _, line := range lines {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			indented++
		}
		if strings.TrimSpace(line) == "" {
			empty++
		}
		totalLen += len(line)
	}

	if n := len(lines); n > 0 {
		ratio := float64(indented) / float64(n)
		if ratio > 0.2 && ratio < 0.8 {
			score += 0.2
		}
		avg := float64(totalLen) / float64(n)
		if avg > 10 && avg < 120 {
			score += 0.2
		}
		if empty > 0 && float64(empty) < float64(n)*0.3 {
			score += 0.2
		}
	}

	if len(content) > 100 && len(content) < 10000 {
		score += 0.2
	}

	return math.Min(score, 1.0)
}

// authenticityScore penalizes placeholder markers and repetition.
func authenticityScore(content string) float64 {
	score := 1.0
	lower := strings.ToLower(content)

	hits := 0
	for _, p := range placeholderTokens {
		if strings.Contains(lower, p) {
			hits++
		}
	}
	score -= math.Min(float64(hits)*0.05, 0.3)

	lines := strings.Split(content, "\n")
	if len(lines) > 5 {
		unique := make(map[string]bool, len(lines))
		for _, line := range lines {
			unique[line] = true
		}
		if float64(len(unique))/float64(len(lines)) < 0.5 {
			score -= 0.2
		}
	}

	return math.Max(score, 0)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
