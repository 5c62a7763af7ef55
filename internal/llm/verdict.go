package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyResponse = errors.New("grader returned an empty response")

// ParseVerdict extracts the JSON object from a model response. Models occasionally wrap
// the object in a markdown code fence even when asked not to.
func ParseVerdict(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimPrefix(content, "json")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	if content == "" {
		return nil, ErrEmptyResponse
	}
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("grader response is not valid json: %.200q", content)
	}
	return json.RawMessage(content), nil
}
