package llm

import "strings"

// summaryLabel is the cue at the end of the prompt, which some models echo.
const summaryLabel = "CONCISE SUMMARY:"

// cleanSummary strips an echoed prompt cue, surrounding quotes and
// markdown code fences from a model response.
func cleanSummary(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, summaryLabel); idx >= 0 {
		s = strings.TrimSpace(s[idx+len(summaryLabel):])
	}

	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimPrefix(s, "```")
		// Drop a language tag on the opening fence
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " \t") {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(s)
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
