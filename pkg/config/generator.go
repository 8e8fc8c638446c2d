package config

// GeneratorConfig selects and configures the generative text provider.
type GeneratorConfig struct {
	// Provider is one of openai, azure, anthropic, gemini, bedrock.
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int

	AzureEndpoint   string
	AzureAPIVersion string

	GeminiProject  string
	GeminiLocation string

	AWSRegion string
}

func loadGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Provider:        getEnv("METAGEN_PROVIDER", "openai"),
		Model:           getEnv("METAGEN_MODEL", ""),
		APIKey:          getEnv("METAGEN_API_KEY", ""),
		Temperature:     getEnvFloat("METAGEN_TEMPERATURE", 0.3),
		MaxTokens:       getEnvInt("METAGEN_MAX_TOKENS", 1024),
		AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-10-21"),
		GeminiProject:   getEnv("GEMINI_PROJECT", ""),
		GeminiLocation:  getEnv("GEMINI_LOCATION", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
	}
}
