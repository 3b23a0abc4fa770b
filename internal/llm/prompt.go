package llm

import "strings"

const (
	promptHead = "Extract structured information from the following text in JSON format:\n" +
		"Text: "

	// The single-quoted example is part of the instruction the service was tuned on.
	promptTail = "\n\n" +
		"Output format:\n" +
		"{\n" +
		"  'data': {\n" +
		"    'email': 'email@example.com',\n" +
		"    'phone_numbers': ['+123456789', '+987654321'],\n" +
		"    'agent_name': 'John Doe',\n" +
		"    'company_name': 'Company Inc.',\n" +
		"    'web_presence': {\n" +
		"      'website': 'https://company.com',\n" +
		"      'facebook': 'https://facebook.com/company',\n" +
		"      'instagram': 'https://instagram.com/company',\n" +
		"      'twitter': 'https://twitter.com/company'\n" +
		"    }\n" +
		"  }\n" +
		"}\n" +
		"If a field is not present, use null for that field."
)

// BuildPrompt embeds the OCR text in the fixed restructuring instruction.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(promptHead) + len(text) + len(promptTail))
	b.WriteString(promptHead)
	b.WriteString(text)
	b.WriteString(promptTail)
	return b.String()
}
