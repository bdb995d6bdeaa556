package config

import (
	"github.com/pkg/errors"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// LLMConfig selects the model service. Batch jobs always go through the
// OpenAI batch API; Provider only switches the synchronous streaming path.
type LLMConfig struct {
	Provider       string  `json:"provider" yaml:"provider"`
	BaseURL        string  `json:"baseURL" yaml:"baseURL"`
	APIKey         string  `json:"apiKey" yaml:"apiKey"`
	APIKeyEnv      string  `json:"apiKeyEnv" yaml:"apiKeyEnv"`
	Model          string  `json:"model" yaml:"model"`
	Temperature    float64 `json:"temperature" yaml:"temperature"`
	TimeoutSeconds int     `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

func (l *LLMConfig) Validate() []error {
	var errs = make([]error, 0)
	switch l.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, errors.Errorf("unknown llm provider %q", l.Provider))
	}
	if l.Model == "" {
		errs = append(errs, errors.New("llm model must not be empty"))
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		errs = append(errs, errors.Errorf("llm temperature %.2f out of range [0,2]", l.Temperature))
	}
	return errs
}

func NewDefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		Provider:       ProviderOpenAI,
		BaseURL:        "https://api.openai.com",
		APIKeyEnv:      "OPENAI_API_KEY",
		Model:          "gpt-4o",
		Temperature:    0,
		TimeoutSeconds: 120,
	}
}
