package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tscat/internal/adapters/llm/factory"
	"tscat/internal/domain"
)

func TestFromProvider(t *testing.T) {
	for _, typ := range []string{"ollama", "OpenRouter"} {
		p, err := factory.FromProvider(domain.Provider{Type: typ})
		require.NoError(t, err, typ)
		assert.NotNil(t, p)
	}
	_, err := factory.FromProvider(domain.Provider{Type: "deepl"})
	assert.ErrorContains(t, err, `unsupported provider: "deepl"`)
}
