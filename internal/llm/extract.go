package llm

import (
	"regexp"
	"strings"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*\n(.*?)\n\\s*```")
	fencedRe     = regexp.MustCompile("(?s)```\\s*\n(.*?)\n\\s*```")
	braceRe      = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON pulls a JSON document out of a model response that may wrap it
// in markdown fences or surrounding prose. Returns the input unchanged when
// nothing JSON-shaped is found, leaving the decode error to the caller.
func ExtractJSON(response string) string {
	response = strings.TrimSpace(response)

	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}

	if m := fencedRe.FindStringSubmatch(response); m != nil {
		candidate := strings.TrimSpace(m[1])
		if strings.HasPrefix(candidate, "{") && strings.HasSuffix(candidate, "}") {
			return candidate
		}
	}

	if m := braceRe.FindString(response); m != "" {
		return m
	}

	return response
}
