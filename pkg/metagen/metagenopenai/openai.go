package metagenopenai

import (
	"context"
	"errors"
	"os"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/metagen"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const DefaultModel = "gpt-4o-mini"

// Client completes prompts with the Chat Completions API, either against
// OpenAI or an Azure OpenAI deployment.
type Client struct {
	client   openai.Client
	provider string
}

var _ metagen.Completer = (*Client)(nil)

// New creates an OpenAI client. An empty apiKey falls back to OPENAI_API_KEY.
func New(apiKey string, opts ...option.RequestOption) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{client: openai.NewClient(options...), provider: "openai"}
}

// AzureConfig selects an Azure OpenAI endpoint. Credential takes precedence
// over APIKey when set.
type AzureConfig struct {
	Endpoint   string
	APIVersion string
	APIKey     string
	Credential azcore.TokenCredential
}

// NewAzure creates a client for an Azure OpenAI resource. The model option
// of each call is the deployment name.
func NewAzure(cfg AzureConfig, opts ...option.RequestOption) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, metagen.ErrMissingConfig("azure", "endpoint")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-10-21"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}

	clientOpts := []option.RequestOption{azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion)}
	if cfg.Credential != nil {
		clientOpts = append(clientOpts, azure.WithTokenCredential(cfg.Credential))
	} else {
		if cfg.APIKey == "" {
			return nil, metagen.ErrMissingConfig("azure", "api_key")
		}
		clientOpts = append(clientOpts, azure.WithAPIKey(cfg.APIKey))
	}
	clientOpts = append(clientOpts, opts...)

	return &Client{client: openai.NewClient(clientOpts...), provider: "azure"}, nil
}

// NewGenerator wraps c as a seojob.Generator.
func (c *Client) NewGenerator(opts ...metagen.Option) *metagen.Generator {
	defaultModel := DefaultModel
	if c.provider == "azure" {
		defaultModel = ""
	}
	return metagen.NewGenerator(c.provider, c, metagen.NewOptions(defaultModel, opts...))
}

func (c *Client) Complete(ctx context.Context, p metagen.Prompt, o metagen.Options) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if o.Temperature != 0 {
		params.Temperature = openai.Float(o.Temperature)
	}
	if o.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.classify(err).WithDetail("model", o.Model)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", metagen.ErrEmptyResponse(c.provider).WithDetail("model", o.Model)
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) classify(err error) *errx.Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return metagen.Classify(c.provider, apiErr.StatusCode, err)
	}
	return metagen.Classify(c.provider, 0, err)
}
