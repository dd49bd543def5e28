package config

// NotifyConfig controls AMQP inventory notifications; disabled when URL is empty.
type NotifyConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// Enabled reports whether a broker is configured.
func (c NotifyConfig) Enabled() bool {
	return c.URL != ""
}

func loadNotify() NotifyConfig {
	return NotifyConfig{
		URL:        envOrDefault(envRabbitURL, ""),
		Exchange:   envOrDefault(envRabbitExchange, defaultRabbitExchange),
		RoutingKey: envOrDefault(envRabbitRouting, defaultRabbitRouting),
	}
}
