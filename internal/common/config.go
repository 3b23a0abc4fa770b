package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Config holds all application configuration
type Config struct {
	Pipeline  PipelineConfig
	OCR       OCRConfig
	LLM       LLMConfig
	Gazetteer GazetteerConfig
	Batch     BatchConfig
	LogLevel  string
}

// PipelineConfig selects the restructuring strategy and its collaborators
type PipelineConfig struct {
	Strategy        string // constants.StrategyRules | constants.StrategyLLM
	NERBackend      string // constants.NERRules | constants.NERProse
	Concurrent      bool
	AddressStoplist []string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string
	TessdataDir string
	Lang        string
	PSM         int
	Timeout     time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// GazetteerConfig points at an optional place lexicon; both empty means the embedded one.
type GazetteerConfig struct {
	File string
	DB   string
}

// BatchConfig holds worker pool configuration for directory runs
type BatchConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Strategy:        getEnv("CARDSCAN_STRATEGY", constants.StrategyRules),
			NERBackend:      getEnv("NER_BACKEND", constants.NERRules),
			Concurrent:      getEnvAsBool("CARDSCAN_CONCURRENT", true),
			AddressStoplist: getEnvAsList("ADDRESS_STOPLIST", []string{"kenya", "uganda", "tanzania"}),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Lang:        getEnv("TESSERACT_LANG", "eng"),
			PSM:         getEnvAsInt("TESSERACT_PSM", 0),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", time.Minute),
		},
		LLM: LLMConfig{
			Model:     getEnv("OPENAI_MODEL", "gpt-4"),
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			MaxTokens: getEnvAsInt("OPENAI_MAX_TOKENS", 500),
			Timeout:   getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Gazetteer: GazetteerConfig{
			File: getEnv("GAZETTEER_FILE", ""),
			DB:   getEnv("GAZETTEER_DB", ""),
		},
		Batch: BatchConfig{
			Workers:    getEnvAsInt("BATCH_WORKERS", 4),
			QueueSize:  getEnvAsInt("BATCH_QUEUE_SIZE", 64),
			JobTimeout: getEnvAsDuration("BATCH_JOB_TIMEOUT", 3*time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value; an unset variable yields defaultValue.
func getEnvAsList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("CARDSCAN_STRATEGY", c.Pipeline.Strategy, Required, OneOf(constants.StrategyRules, constants.StrategyLLM)).
		Field("NER_BACKEND", c.Pipeline.NERBackend, Required, OneOf(constants.NERRules, constants.NERProse)).
		Field("TESSERACT_BIN", c.OCR.Tesseract, Required).
		Field("BATCH_WORKERS", c.Batch.Workers, Positive)
	if c.Pipeline.Strategy == constants.StrategyLLM {
		v.Field("OPENAI_API_KEY", c.LLM.APIKey, Required).
			Field("OPENAI_MAX_TOKENS", c.LLM.MaxTokens, Positive)
	}
	v.Check(c.Gazetteer.File == "" || c.Gazetteer.DB == "", "GAZETTEER_DB", c.Gazetteer.DB, "cannot be combined with GAZETTEER_FILE")
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
