package config

const (
	EnvPrefix = "MAGUS"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	// DevJWTSecret is only ever used when MAGUS_APP_ENV=dev and no secret
	// is configured. Never valid outside dev.
	DevJWTSecret = "dev-secret-change-me"

	EnvAppEnv    = "MAGUS_APP_ENV"
	EnvPort      = "MAGUS_APP_PORT"
	EnvDBDSN     = "MAGUS_DB_DSN"
	EnvRedisURL  = "MAGUS_REDIS_URL"
	EnvJWTSecret = "MAGUS_JWT_SECRET"
)
