package config

// EnvPrefix namespaces every StockPing environment variable.
const EnvPrefix = "STOCKPING"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv          = "STOCKPING_APP_ENV"
	EnvAppPort         = "STOCKPING_APP_PORT"
	EnvAppURL          = "STOCKPING_APP_URL"
	EnvDBDSN           = "STOCKPING_DB_DSN"
	EnvDBHost          = "STOCKPING_DB_HOST"
	EnvDBUser          = "STOCKPING_DB_USER"
	EnvDBName          = "STOCKPING_DB_NAME"
	EnvRedisURL        = "STOCKPING_REDIS_URL"
	EnvDigestFrequency = "STOCKPING_DIGEST_FREQUENCY"
	EnvDigestInterval  = "STOCKPING_DIGEST_INTERVAL"
	EnvSendgridAPIKey  = "STOCKPING_SENDGRID_API_KEY"
	EnvSendgridFrom    = "STOCKPING_SENDGRID_FROM_EMAIL"
	EnvAdminToken      = "STOCKPING_ADMIN_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
