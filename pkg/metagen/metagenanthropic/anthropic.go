package metagenanthropic

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/metagen"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = "claude-sonnet-4-20250514"

// Client completes prompts with the Anthropic Messages API
type Client struct {
	client anthropic.Client
}

var _ metagen.Completer = (*Client)(nil)

// New creates a client. An empty apiKey falls back to ANTHROPIC_API_KEY.
func New(apiKey string, opts ...option.RequestOption) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{client: anthropic.NewClient(options...)}
}

func (c *Client) NewGenerator(opts ...metagen.Option) *metagen.Generator {
	return metagen.NewGenerator("anthropic", c, metagen.NewOptions(DefaultModel, opts...))
}

func (c *Client) Complete(ctx context.Context, p metagen.Prompt, o metagen.Options) (string, error) {
	maxTokens := int64(1024)
	if o.MaxTokens > 0 {
		maxTokens = int64(o.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(o.Model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: p.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	}
	if o.Temperature != 0 {
		params.Temperature = anthropic.Float(o.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(err).WithDetail("model", o.Model)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", metagen.ErrEmptyResponse("anthropic").WithDetail("model", o.Model)
	}
	return b.String(), nil
}

func classify(err error) *errx.Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return metagen.Classify("anthropic", apiErr.StatusCode, err)
	}
	return metagen.Classify("anthropic", 0, err)
}
