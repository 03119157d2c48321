package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/interfaces"
)

// NewLLMService creates the appropriate LLM service implementation based on
// the configured provider.
func NewLLMService(cfg *common.LLMConfig, logger arbor.ILogger) (interfaces.LLMService, error) {
	logger.Info().Str("provider", string(cfg.Provider)).Msg("Initializing LLM service")

	switch cfg.Provider {
	case common.LLMProviderGemini, "":
		return NewGeminiService(&cfg.Gemini, logger)
	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, logger)
	default:
		return nil, fmt.Errorf("invalid LLM provider '%s': must be 'gemini' or 'claude'", cfg.Provider)
	}
}
