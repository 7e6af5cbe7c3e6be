package factory

import (
	"ai-meetnotes/pkg/llm"
	"ai-meetnotes/pkg/llm/langchain"
	"ai-meetnotes/pkg/llm/ollama"
	"fmt"
)

const (
	ProviderOllama          = "ollama"
	ProviderOpenAI          = "openai"
	ProviderLangchainOllama = "langchain-ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case ProviderLangchainOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return langchain.NewOllama(baseURL, modelName)
	case ProviderOpenAI:
		// baseURL left empty means the public OpenAI endpoint
		return langchain.NewOpenAI(apiKey, baseURL, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
