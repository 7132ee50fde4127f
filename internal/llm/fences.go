package llm

import (
	"regexp"
	"strings"
)

// fenced matches the first markdown code fence, an optional language tag,
// and its body up to the closing fence or the end of the text.
var fenced = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\n?(.*?)(?:```|$)")

// StripFences returns the body of the first code fence in a model answer,
// or the trimmed answer when it has none.
func StripFences(answer string) string {
	answer = strings.TrimSpace(answer)
	if m := fenced.FindStringSubmatch(answer); m != nil {
		return strings.TrimSpace(m[1])
	}
	return answer
}
