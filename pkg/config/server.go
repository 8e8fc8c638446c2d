package config

// ServerConfig configures the admin HTTP server and operator token checks.
type ServerConfig struct {
	Port        string
	CORSOrigins []string
	AppVersion  string

	// OperatorJWTSecret verifies tokens issued by the identity service.
	// Empty disables operator auth (local development only).
	OperatorJWTSecret string
	OperatorJWTIssuer string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:              getEnv("PORT", "8080"),
		CORSOrigins:       getEnvStringSlice("CORS_ORIGINS", []string{"*"}),
		AppVersion:        getEnv("APP_VERSION", "1.0.0"),
		OperatorJWTSecret: getEnv("OPERATOR_JWT_SECRET", ""),
		OperatorJWTIssuer: getEnv("OPERATOR_JWT_ISSUER", ""),
	}
}
