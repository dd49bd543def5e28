package config

// LogConfig controls the console logger and optional fluent forwarding.
type LogConfig struct {
	Level  string
	Format string
	Fluent FluentConfig
}

// FluentConfig is enabled when Host is set.
type FluentConfig struct {
	Host      string
	Port      int
	TagPrefix string
}

// Enabled reports whether logs should be forwarded to fluentd.
func (c FluentConfig) Enabled() bool {
	return c.Host != ""
}

func loadLog() LogConfig {
	return LogConfig{
		Level:  envOrDefault(envLogLevel, defaultLogLevel),
		Format: envOrDefault(envLogFormat, defaultLogFormat),
		Fluent: FluentConfig{
			Host:      envOrDefault(envFluentHost, ""),
			Port:      intEnvOrDefault(envFluentPort, defaultFluentPort),
			TagPrefix: envOrDefault(envFluentTag, defaultFluentTag),
		},
	}
}
