package validate

import (
	"fmt"
	"regexp"
	"strings"

	"decoyforge/internal/token"
)

// secretPatterns match real-world credential formats. Any hit that is not the
// deliberately minted honeytoken for this content is a hard fail: an untracked
// secret-looking string in a decoy either leaks something real or plants a
// credential the ledger cannot attribute.
var secretPatterns = map[string]*regexp.Regexp{
	"aws_access_key": regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	"github_token":   regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
	"github_oauth":   regexp.MustCompile(`gho_[A-Za-z0-9]{36}`),
	"slack_token":    regexp.MustCompile(`xox[baprs]-[0-9]{10,12}-[0-9]{10,12}-[A-Za-z0-9]{24,}`),
	"slack_webhook":  regexp.MustCompile(`https://hooks\.slack\.com/services/T[A-Z0-9]{8}/B[A-Z0-9]{8}/[A-Za-z0-9]{24}`),
	"private_key":    regexp.MustCompile(`-----BEGIN (?:RSA |DSA |EC |OPENSSH )?PRIVATE KEY-----`),
	"google_api":     regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
	"stripe_key":     regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24,}`),
	"twilio_api":     regexp.MustCompile(`SK[0-9a-fA-F]{32}`),
	"jwt":            regexp.MustCompile(`eyJ[A-Za-z0-9_-]{8,}\.eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]+`),
}

// credentialPatterns flag secrets embedded in connection strings.
var credentialPatterns = map[string]*regexp.Regexp{
	"postgres_url":      regexp.MustCompile(`(?i)postgres(?:ql)?://[^:\s]+:[^@\s]+@`),
	"mysql_url":         regexp.MustCompile(`(?i)mysql://[^:\s]+:[^@\s]+@`),
	"connection_string": regexp.MustCompile(`(?i)Server=.*Password=`),
}

var (
	publicIPPattern = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Security scans for real-looking credentials not minted for this request,
// and verifies the declared honeytoken conforms to its canonical format.
func Security(content string, meta Meta) Result {
	var violations, warnings []string

	for name, pattern := range secretPatterns {
		for _, match := range pattern.FindAllString(content, -1) {
			if isExpected(match, meta.Expected) {
				continue
			}
			violations = append(violations,
				fmt.Sprintf("untracked %s pattern in content: %s...", name, preview(match)))
		}
	}

	for name, pattern := range credentialPatterns {
		if loc := pattern.FindString(content); loc != "" && !isExpected(loc, meta.Expected) {
			warnings = append(warnings, fmt.Sprintf("embedded credential in %s", name))
		}
	}

	if exp := meta.Expected; exp != nil {
		if !token.Validate(exp.Type, exp.Value) {
			violations = append(violations,
				fmt.Sprintf("declared honeytoken does not match canonical %s format", exp.Type))
		}
		if !strings.Contains(content, exp.Value) {
			violations = append(violations, "declared honeytoken value absent from content")
		}
	}

	if n := countRoutableIPs(content); n > 0 {
		warnings = append(warnings, fmt.Sprintf("found %d potential public IP addresses", n))
	}
	if n := countSuspiciousEmails(content); n > 0 {
		warnings = append(warnings, fmt.Sprintf("found %d email addresses that may be real", n))
	}

	passed := len(violations) == 0
	score := 1.0
	if !passed {
		score = 0
	} else if len(warnings) > 0 {
		score = 0.7
	}
	return Result{Validator: ValidatorSecurity, Passed: passed, Score: score, Violations: violations, Warnings: warnings}
}

// isExpected reports whether a scanner hit lies inside the deliberately
// minted honeytoken value. Substring containment covers multi-line values
// such as private key blocks whose header alone matches a pattern.
func isExpected(match string, exp *ExpectedToken) bool {
	return exp != nil && strings.Contains(exp.Value, match)
}

func preview(match string) string {
	if len(match) > 12 {
		return match[:12]
	}
	return match
}

// countRoutableIPs counts IPs outside private, loopback, and reserved ranges.
func countRoutableIPs(content string) int {
	n := 0
	for _, ip := range publicIPPattern.FindAllString(content, -1) {
		if strings.HasPrefix(ip, "10.") ||
			strings.HasPrefix(ip, "192.168.") ||
			strings.HasPrefix(ip, "127.") ||
			strings.HasPrefix(ip, "0.") ||
			strings.HasPrefix(ip, "255.") ||
			isRFC1918Slash12(ip) {
			continue
		}
		n++
	}
	return n
}

func isRFC1918Slash12(ip string) bool {
	if !strings.HasPrefix(ip, "172.") {
		return false
	}
	rest := strings.TrimPrefix(ip, "172.")
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return false
	}
	switch rest[:dot] {
	case "16", "17", "18", "19", "20", "21", "22", "23",
		"24", "25", "26", "27", "28", "29", "30", "31":
		return true
	}
	return false
}

// countSuspiciousEmails counts addresses that do not look deliberately fake.
func countSuspiciousEmails(content string) int {
	n := 0
	for _, email := range emailPattern.FindAllString(content, -1) {
		lower := strings.ToLower(email)
		if containsAny(lower, "example.com", "example.org", "test.com", "fake.", "dummy", "sample", "localhost") {
			continue
		}
		n++
	}
	return n
}
