package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// StripCodeFences removes a surrounding markdown code fence such as
// ```json ... ``` from a model response.
func StripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return strings.Trim(raw, "`")
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}

// DecodeJSON parses a model response into out and validates it against
// out's `validate` struct tags.
func DecodeJSON(raw string, out any) error {
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), out); err != nil {
		return fmt.Errorf("json parse: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("response schema: %w", err)
	}
	return nil
}
