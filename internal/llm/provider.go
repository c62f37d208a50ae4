package llm

import (
	"fmt"

	"github.com/Harshitk-cp/soulbench/internal/domain"
)

// Provider constants
const (
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// NewClient creates a chat client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty
// (except for mock).
func NewClient(provider, apiKey, baseURL string, rps float64, burst int) (domain.ChatClient, error) {
	switch provider {
	case ProviderOpenRouter:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for OpenRouter provider")
		}
		return NewOpenRouterClient(apiKey, baseURL, rps, burst), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown chat provider: %s (valid options: openrouter, mock)", provider)
	}
}
