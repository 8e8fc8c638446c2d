package metagenbedrock

import (
	"context"
	"errors"
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/metagen"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const DefaultModel = "anthropic.claude-sonnet-4-20250514-v1:0"

// ConverseAPI is the part of *bedrockruntime.Client the adapter calls.
type ConverseAPI interface {
	Converse(ctx context.Context, in *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client completes prompts with the Bedrock Converse API
type Client struct {
	api ConverseAPI
}

var _ metagen.Completer = (*Client)(nil)

func New(cfg aws.Config) *Client {
	return &Client{api: bedrockruntime.NewFromConfig(cfg)}
}

func NewWithAPI(api ConverseAPI) *Client {
	return &Client{api: api}
}

func (c *Client) NewGenerator(opts ...metagen.Option) *metagen.Generator {
	return metagen.NewGenerator("bedrock", c, metagen.NewOptions(DefaultModel, opts...))
}

func (c *Client) Complete(ctx context.Context, p metagen.Prompt, o metagen.Options) (string, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(o.Model),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: p.System},
		},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: p.User}},
		}},
	}

	inference := &types.InferenceConfiguration{}
	if o.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(int32(o.MaxTokens))
	}
	if o.Temperature != 0 {
		inference.Temperature = aws.Float32(float32(o.Temperature))
	}
	input.InferenceConfig = inference

	output, err := c.api.Converse(ctx, input)
	if err != nil {
		return "", classify(err).WithDetail("model", o.Model)
	}

	msg, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", metagen.ErrEmptyResponse("bedrock").WithDetail("model", o.Model)
	}

	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	if b.Len() == 0 {
		return "", metagen.ErrEmptyResponse("bedrock").WithDetail("model", o.Model)
	}
	return b.String(), nil
}

func classify(err error) *errx.Error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return metagen.Classify("bedrock", 429, err)
	}
	var denied *types.AccessDeniedException
	if errors.As(err, &denied) {
		return metagen.Classify("bedrock", 403, err)
	}
	var missing *types.ResourceNotFoundException
	if errors.As(err, &missing) {
		return metagen.Classify("bedrock", 404, err)
	}
	return metagen.Classify("bedrock", 0, err)
}
