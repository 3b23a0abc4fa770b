package constants

// Restructuring strategies.
const (
	StrategyRules = "rules"
	StrategyLLM   = "llm"
)

// NER backends.
const (
	NERRules = "rules"
	NERProse = "prose"
)

// Result messages, one per strategy.
const (
	MessageRules = "Text extracted successfully."
	MessageLLM   = "Text extracted and restructured successfully."
)

// InvalidFileTypeMessage is reported when an upload is not an image.
const InvalidFileTypeMessage = "Invalid file type. Please upload an image file."
