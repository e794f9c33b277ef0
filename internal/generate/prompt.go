package generate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// System prompts per content type. The register matters more than the
// details: the model is asked for production-plausible output, never for
// obviously synthetic filler.
var systemPrompts = map[string]string{
	ContentSourceCode: `You are an experienced software developer writing production code.
Write working code with realistic naming, error handling, and the occasional legacy pattern.
The code must be syntactically valid. Never include placeholder text or obviously fake data.
Output only the raw file content with no surrounding explanation or markdown fences.`,

	ContentConfig: `You are a senior operations engineer writing production configuration files.
Use realistic values, sensible defaults, and brief comments where an operator would leave them.
Never include placeholder text. Output only the raw file content with no markdown fences.`,

	ContentLog: `You are generating plausible server log output.
Produce authentic log lines with consistent timestamps, realistic IP addresses from the given
internal range, and a believable mix of routine events and occasional errors.
Output only the raw log lines with no explanation.`,

	ContentDocument: `You are a developer writing internal notes and documentation.
Write the way engineers actually write: terse, jargon-heavy, sometimes unfinished.
Output only the raw document content with no markdown fences around it.`,
}

// SystemPrompt returns the system prompt for a content type.
func SystemPrompt(contentType string) string {
	if p, ok := systemPrompts[contentType]; ok {
		return p
	}
	return systemPrompts[ContentDocument]
}

// BuildPrompt assembles the user prompt from the request and the job's
// resolved slot values. Slot values are quoted verbatim and the model is told
// to reuse them exactly, which is what keeps sibling artifacts consistent.
func BuildPrompt(req Request, slots map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate the complete content of the file %s.\n", req.Path)
	if req.FileType != "" {
		fmt.Fprintf(&b, "File format: %s.\n", req.FileType)
	}
	if req.Purpose != "" {
		fmt.Fprintf(&b, "Purpose: %s.\n", req.Purpose)
	}

	if len(slots) > 0 {
		b.WriteString("\nThis file belongs to an environment with the following established identity.\n")
		b.WriteString("Use these exact values verbatim wherever they are relevant; never invent alternatives:\n")
		for _, name := range sortedKeys(slots) {
			fmt.Fprintf(&b, "- %s: %s\n", name, slots[name])
		}
	}

	b.WriteString("\nThe content must look like it has existed on a real machine for months.\n")
	b.WriteString("Do not include real credentials, API keys, or secrets of any kind.\n")
	return b.String()
}

// PromptHash fingerprints a prompt for the generation log.
func PromptHash(system, user string) string {
	sum := sha256.Sum256([]byte(system + "\x00" + user))
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
