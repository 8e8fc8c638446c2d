package metagengemini

import (
	"context"
	"os"
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/metagen"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// Config selects the Gemini API (APIKey) or Vertex AI (Project and Location).
type Config struct {
	APIKey   string
	Project  string
	Location string
	BaseURL  string
}

// Client completes prompts with Gemini GenerateContent
type Client struct {
	client *genai.Client
}

var _ metagen.Completer = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	config := &genai.ClientConfig{}
	if cfg.Project != "" {
		config.Backend = genai.BackendVertexAI
		config.Project = cfg.Project
		config.Location = cfg.Location
	} else {
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		}
		if cfg.APIKey == "" {
			return nil, metagen.ErrMissingConfig("gemini", "api_key")
		}
		config.Backend = genai.BackendGeminiAPI
		config.APIKey = cfg.APIKey
	}
	if cfg.BaseURL != "" {
		config.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, metagen.Classify("gemini", 0, err).WithDetail("error", "failed to create Gemini client")
	}
	return &Client{client: client}, nil
}

func (c *Client) NewGenerator(opts ...metagen.Option) *metagen.Generator {
	return metagen.NewGenerator("gemini", c, metagen.NewOptions(DefaultModel, opts...))
}

func (c *Client) Complete(ctx context.Context, p metagen.Prompt, o metagen.Options) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(p.System)},
		},
		ResponseMIMEType: "application/json",
	}
	if o.Temperature != 0 {
		config.Temperature = genai.Ptr(float32(o.Temperature))
	}
	if o.MaxTokens > 0 {
		config.MaxOutputTokens = int32(o.MaxTokens)
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(p.User)},
	}}

	result, err := c.client.Models.GenerateContent(ctx, o.Model, contents, config)
	if err != nil {
		return "", metagen.Classify("gemini", 0, err).WithDetail("model", o.Model)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", metagen.ErrEmptyResponse("gemini").WithDetail("model", o.Model)
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", metagen.ErrEmptyResponse("gemini").WithDetail("model", o.Model)
	}
	return b.String(), nil
}
