// Package httpclient talks to chat-completion style LLM servers over HTTP.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tscat/internal/ports"
)

// dialect is the wire shape of one provider family.
type dialect interface {
	name() string
	chatRequest(c *Client, model string, p ports.TranslateParams) (*resty.Request, string, any)
	// retryBody returns a relaxed request body after a 400, or nil.
	retryBody(body any) any
	reply(r *resty.Response) (string, error)
	models(ctx context.Context, c *Client) ([]ports.ModelInfo, error)
}

type Client struct {
	ProviderType string
	APIKey       string
	BaseURL      string
	Model        string
	http         *resty.Client
	dialect      dialect
}

func New(providerType, apiKey, baseURL, model string) *Client {
	c := &Client{
		ProviderType: strings.ToLower(providerType),
		APIKey:       apiKey,
		BaseURL:      baseURL,
		Model:        model,
		http:         resty.New().SetTimeout(60 * time.Second).SetHeader("Content-Type", "application/json"),
	}
	switch c.ProviderType {
	case "ollama":
		c.dialect = ollama{}
	case "openrouter":
		c.dialect = openRouter{}
	}
	return c
}

// Translate sends the rendered prompts and extracts the translation from
// the reply. Errors name the Qt context and key of seg when known.
func (c *Client) Translate(ctx context.Context, seg ports.Segment, p ports.TranslateParams) (ports.TranslateResult, error) {
	res, err := c.translate(ctx, p)
	if err != nil && (seg.Context != "" || seg.Key != "") {
		err = fmt.Errorf("%w (context %q, key %q)", err, seg.Context, seg.Key)
	}
	return res, err
}

func (c *Client) translate(ctx context.Context, p ports.TranslateParams) (ports.TranslateResult, error) {
	if c.dialect == nil {
		return ports.TranslateResult{}, fmt.Errorf("unsupported provider: %s", c.ProviderType)
	}
	model := p.Model
	if model == "" {
		model = c.Model
	}
	req, url, body := c.dialect.chatRequest(c, model, p)
	rr, err := req.SetContext(ctx).SetBody(body).Post(url)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if rr.StatusCode() == http.StatusBadRequest {
		if relaxed := c.dialect.retryBody(body); relaxed != nil {
			req, url, _ = c.dialect.chatRequest(c, model, p)
			if rr, err = req.SetContext(ctx).SetBody(relaxed).Post(url); err != nil {
				return ports.TranslateResult{}, err
			}
		}
	}
	if rr.IsError() {
		return ports.TranslateResult{}, fmt.Errorf("%s translate: %s; body: %s", c.dialect.name(), rr.Status(), rr.String())
	}
	content, err := c.dialect.reply(rr)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	content = strings.TrimSpace(content)
	tr, err := extractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	if c.dialect == nil {
		return nil, fmt.Errorf("unsupported provider: %s", c.ProviderType)
	}
	return c.dialect.models(ctx, c)
}

// Test checks that the server answers a model listing.
func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func (c *Client) base(def string) string {
	if c.BaseURL == "" {
		return def
	}
	return c.BaseURL
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func prompts(p ports.TranslateParams) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: p.SystemPrompt},
		{Role: "user", Content: p.UserPrompt},
	}
}
