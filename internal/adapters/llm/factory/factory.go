package factory

import (
	"fmt"
	"strings"

	httpprov "tscat/internal/adapters/llm/httpclient"
	"tscat/internal/domain"
	"tscat/internal/ports"
)

// FromProvider returns an HTTP-backed provider for the given settings.
func FromProvider(p domain.Provider) (ports.Provider, error) {
	switch strings.ToLower(p.Type) {
	case "ollama", "openrouter":
		return httpprov.New(p.Type, p.APIKey, p.BaseURL, p.Model), nil
	}
	return nil, fmt.Errorf("unsupported provider: %q", p.Type)
}
