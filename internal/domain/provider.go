package domain

// Provider describes an LLM endpoint used to fill missing translations.
type Provider struct {
	Type    string `json:"type"` // ollama, openrouter
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}
