package httpclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"tscat/internal/ports"
)

const defaultOpenRouterURL = "https://openrouter.ai"

type openRouter struct{}

type openRouterChat struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat any           `json:"response_format"`
}

type openRouterReply struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// translationSchema asks for {"translation": "..."} and nothing else.
var translationSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "translation",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"translation": map[string]any{"type": "string"},
			},
			"required":             []string{"translation"},
			"additionalProperties": false,
		},
	},
}

func (openRouter) name() string { return "openrouter" }

func (openRouter) request(c *Client) *resty.Request {
	return c.http.R().
		SetHeader("Authorization", "Bearer "+c.APIKey).
		SetHeader("X-Title", "tscat")
}

func (o openRouter) chatRequest(c *Client, model string, p ports.TranslateParams) (*resty.Request, string, any) {
	body := openRouterChat{
		Model:          model,
		Messages:       prompts(p),
		Temperature:    p.Temperature,
		ResponseFormat: translationSchema,
	}
	return o.request(c).SetResult(&openRouterReply{}), openRouterURL(c.base(defaultOpenRouterURL), "/chat/completions"), body
}

// retryBody drops the strict schema for models that only know json_object.
func (openRouter) retryBody(body any) any {
	b, ok := body.(openRouterChat)
	if !ok {
		return nil
	}
	b.ResponseFormat = map[string]string{"type": "json_object"}
	return b
}

func (openRouter) reply(r *resty.Response) (string, error) {
	resp := r.Result().(*openRouterReply)
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o openRouter) models(ctx context.Context, c *Client) ([]ports.ModelInfo, error) {
	var resp struct {
		Data []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			ContextLength int    `json:"context_length"`
		} `json:"data"`
	}
	rr, err := o.request(c).SetContext(ctx).SetResult(&resp).Get(openRouterURL(c.base(defaultOpenRouterURL), "/models"))
	if err != nil {
		return nil, err
	}
	if rr.IsError() {
		return nil, fmt.Errorf("openrouter list models: %s; body: %s", rr.Status(), rr.String())
	}
	out := make([]ports.ModelInfo, 0, len(resp.Data))
	for _, d := range resp.Data {
		label := d.Name
		if label == "" {
			label = d.ID
		}
		out = append(out, ports.ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
	}
	return out, nil
}

// openRouterURL builds an API URL whether base already ends in /api/v1 or not.
func openRouterURL(base, tail string) string {
	b := strings.TrimRight(base, "/")
	if idx := strings.Index(b, "/api/v1"); idx >= 0 {
		return b[:idx+len("/api/v1")] + tail
	}
	return b + "/api/v1" + tail
}
