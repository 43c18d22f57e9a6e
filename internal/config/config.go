package config

type Config interface {
	EnvConfig
	ServiceConfig
	CacheConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type ServiceConfig interface {
	GetServiceBaseURL() string
	GetRequestTimeout() Duration
	GetTokenRefreshThreshold() Duration
}

type CacheConfig interface {
	GetProfileTTL() Duration
	GetUnitsTTL() Duration
	GetDictionaryTTL() Duration
	GetEntriesTTL() Duration
}

type mainConfig struct {
	EnvVars
	Service
	Cache
}

func New() Config {
	return mainConfig{}
}
