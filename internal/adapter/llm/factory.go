package llm

import (
	"github.com/rs/zerolog/log"

	"github.com/storekeep/storekeep/internal/config"
)

// NewGateway creates a Gateway from configuration: the mock when mock mode
// is set or no API key is configured, otherwise the OpenAI client.
func NewGateway(cfg config.OpenAI) Gateway {
	if cfg.Mock || cfg.APIKey == "" {
		log.Info().Msg("using mock model gateway")
		return NewMockGateway()
	}
	return NewOpenAIGateway(cfg)
}
