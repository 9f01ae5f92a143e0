package httpclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"tscat/internal/ports"
)

const defaultOllamaURL = "http://localhost:11434"

type ollama struct{}

type ollamaChat struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format"`
	Options  map[string]any `json:"options"`
}

type ollamaReply struct {
	Message chatMessage `json:"message"`
}

func (ollama) name() string { return "ollama" }

func (ollama) url(c *Client, path string) string {
	return strings.TrimRight(c.base(defaultOllamaURL), "/") + path
}

func (o ollama) chatRequest(c *Client, model string, p ports.TranslateParams) (*resty.Request, string, any) {
	body := ollamaChat{
		Model:    model,
		Messages: prompts(p),
		Format:   "json",
		Options:  map[string]any{"temperature": p.Temperature},
	}
	return c.http.R().SetResult(&ollamaReply{}), o.url(c, "/api/chat"), body
}

func (ollama) retryBody(any) any { return nil }

func (ollama) reply(r *resty.Response) (string, error) {
	return r.Result().(*ollamaReply).Message.Content, nil
}

func (o ollama) models(ctx context.Context, c *Client) ([]ports.ModelInfo, error) {
	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	r, err := c.http.R().SetContext(ctx).SetResult(&resp).Get(o.url(c, "/api/tags"))
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, fmt.Errorf("ollama list models: %s; body: %s", r.Status(), r.String())
	}
	out := make([]ports.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, ports.ModelInfo{Name: m.Name})
	}
	return out, nil
}
