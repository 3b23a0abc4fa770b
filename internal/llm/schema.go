package llm

// BuildContactJSONSchema returns the JSON Schema (draft 2020-12 subset) a normalized
// completion must satisfy. Unknown keys are tolerated.
func BuildContactJSONSchema() map[string]any {
	card := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"email":         nullableString(),
			"phone_numbers": map[string]any{"type": "array", "items": map[string]any{"type": "string", "minLength": 1}},
			"agent_name":    nullableString(),
			"company_name":  nullableString(),
			"web_presence": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"website":   nullableString(),
					"facebook":  nullableString(),
					"instagram": nullableString(),
					"twitter":   nullableString(),
				},
			},
		},
		"required": []string{"email", "phone_numbers", "agent_name", "company_name", "web_presence"},
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"data": card},
		"required":   []string{"data"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}
