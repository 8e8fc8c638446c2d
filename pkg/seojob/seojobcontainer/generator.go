package seojobcontainer

import (
	"context"

	"github.com/Abraxas-365/seoqueue/pkg/config"
	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/metagen"
	"github.com/Abraxas-365/seoqueue/pkg/metagen/metagenanthropic"
	"github.com/Abraxas-365/seoqueue/pkg/metagen/metagenbedrock"
	"github.com/Abraxas-365/seoqueue/pkg/metagen/metagengemini"
	"github.com/Abraxas-365/seoqueue/pkg/metagen/metagenopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
)

// NewGenerator builds the metadata generator selected by cfg.Provider.
// cred is only used by the azure provider and may be nil.
func NewGenerator(ctx context.Context, cfg config.GeneratorConfig, cred azcore.TokenCredential) (*metagen.Generator, error) {
	opts := []metagen.Option{
		metagen.WithModel(cfg.Model),
		metagen.WithTemperature(cfg.Temperature),
		metagen.WithMaxTokens(cfg.MaxTokens),
	}

	switch cfg.Provider {
	case "openai":
		return metagenopenai.New(cfg.APIKey).NewGenerator(opts...), nil

	case "azure":
		client, err := metagenopenai.NewAzure(metagenopenai.AzureConfig{
			Endpoint:   cfg.AzureEndpoint,
			APIVersion: cfg.AzureAPIVersion,
			APIKey:     cfg.APIKey,
			Credential: cred,
		})
		if err != nil {
			return nil, err
		}
		return client.NewGenerator(opts...), nil

	case "anthropic":
		return metagenanthropic.New(cfg.APIKey).NewGenerator(opts...), nil

	case "gemini":
		client, err := metagengemini.New(ctx, metagengemini.Config{
			APIKey:   cfg.APIKey,
			Project:  cfg.GeminiProject,
			Location: cfg.GeminiLocation,
		})
		if err != nil {
			return nil, err
		}
		return client.NewGenerator(opts...), nil

	case "bedrock":
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, errx.Wrap(err, "unable to load AWS SDK config", errx.TypeInternal)
		}
		return metagenbedrock.New(awsCfg).NewGenerator(opts...), nil

	default:
		return nil, metagen.ErrUnknownProvider(cfg.Provider)
	}
}
