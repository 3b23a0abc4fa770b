package llm

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

// ParseContactCard decodes a completion into a ContactCard. Content that is not a
// JSON object, or that still violates the schema after normalization, is reported
// as a malformed LLM response.
func ParseContactCard(content string, logger *slog.Logger) (ContactCard, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw := []byte(stripFence(content))
	if !json.Valid(raw) {
		logger.Error("llm.parse.invalid_json", "content_len", len(content))
		return ContactCard{}, common.MalformedLLMResponse("completion is not valid JSON", nil)
	}

	cleaned, _, err := NormalizeContactJSON(raw, logger)
	if err != nil {
		logger.Error("llm.parse.normalize_failed", "error", err)
		return ContactCard{}, common.MalformedLLMResponse("completion is not a JSON object", err)
	}

	if err := ValidateContactJSON(cleaned); err != nil {
		logger.Error("llm.parse.schema_validation_failed", "error", err, "content", string(cleaned))
		return ContactCard{}, common.MalformedLLMResponse("completion does not match the contact schema", err)
	}

	var env Envelope
	if err := json.Unmarshal(cleaned, &env); err != nil {
		return ContactCard{}, common.MalformedLLMResponse("decode contact card", err)
	}
	if env.Data.PhoneNumbers == nil {
		env.Data.PhoneNumbers = []string{}
	}
	return env.Data, nil
}

// stripFence removes a surrounding ``` or ```json code fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
