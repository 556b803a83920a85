package config

const (
	EnvPrefix = "TAHANAN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TAHANAN_DB_DSN"
	EnvDBHost = "TAHANAN_DB_HOST"
	EnvDBUser = "TAHANAN_DB_USER"
	EnvDBName = "TAHANAN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
