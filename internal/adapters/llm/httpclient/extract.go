package httpclient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var translationRE = regexp.MustCompile(`(?s)"translation"\s*:\s*"(.*?)"`)

// labels a model may put before a plain-text answer
var answerLabels = []string{"translation:", "translated:", "result:", "output:"}

// extractTranslation accepts strict JSON, fenced JSON, JSON inside prose,
// a truncated object, or a plain answer when the model ignored JSON mode.
func extractTranslation(content string) (string, error) {
	s := unfence(strings.TrimSpace(content))
	if tr, ok := decodeTranslation(s); ok {
		return tr, nil
	}
	if m := translationRE.FindStringSubmatch(s); len(m) == 2 {
		return unescapeLoose(m[1]), nil
	}
	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
		if tr, ok := decodeTranslation(s[i : j+1]); ok {
			return tr, nil
		}
	}
	if !strings.Contains(s, "{") {
		lower := strings.ToLower(s)
		for _, k := range answerLabels {
			if pos := strings.Index(lower, k); pos >= 0 && pos < 80 {
				if cand := strings.TrimSpace(s[pos+len(k):]); cand != "" {
					return cand, nil
				}
			}
		}
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("failed to parse translation JSON; content: %s", abbreviate(s, 2000))
}

func unfence(s string) string {
	idx := strings.Index(s, "```")
	if idx < 0 {
		return s
	}
	rest := strings.TrimPrefix(s[idx+3:], "json")
	if j := strings.Index(rest, "```"); j >= 0 {
		return strings.TrimSpace(rest[:j])
	}
	return s
}

func decodeTranslation(s string) (string, bool) {
	var obj struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj.Translation == "" {
		return "", false
	}
	return obj.Translation, true
}

func unescapeLoose(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.ReplaceAll(s, `\"`, `"`)
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
