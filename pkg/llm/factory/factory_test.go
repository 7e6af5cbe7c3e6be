package factory

import (
	"testing"

	"ai-meetnotes/pkg/llm/langchain"
	"ai-meetnotes/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		baseURL  string
		wantType interface{}
		wantErr  bool
	}{
		{name: "native ollama", provider: ProviderOllama, wantType: &ollama.OllamaProvider{}},
		{name: "langchain ollama", provider: ProviderLangchainOllama, baseURL: "http://127.0.0.1:11434", wantType: &langchain.Provider{}},
		{name: "openai compatible", provider: ProviderOpenAI, baseURL: "http://127.0.0.1:8080/v1", wantType: &langchain.Provider{}},
		{name: "unknown", provider: "gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLLMProvider(tt.provider, "m", tt.baseURL, "sk-test")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
		})
	}
}

func TestOllamaDefaultsBaseURL(t *testing.T) {
	p, err := NewLLMProvider(ProviderOllama, "llama3", "", "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)
}
