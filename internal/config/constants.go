package config

import "time"

const (
	envPort            = "PORT"
	envServiceVersion  = "SERVICE_VERSION"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"
	envFluentHost      = "FLUENT_HOST"
	envFluentPort      = "FLUENT_PORT"
	envFluentTag       = "FLUENT_TAG_PREFIX"
	envFreshness       = "FRESHNESS_WINDOW"
	envSweepInterval   = "SWEEP_INTERVAL"
	envPollInterval    = "POLL_INTERVAL"
	envSourcesFile     = "SOURCES_FILE"
	envFetchTimeout    = "FETCH_TIMEOUT"
	envRabbitURL       = "RABBITMQ_URL"
	envRabbitExchange  = "RABBITMQ_EXCHANGE"
	envRabbitRouting   = "RABBITMQ_ROUTING_KEY"
	envMetricsPort     = "METRICS_PORT"
	envMetricsOn       = "METRICS_ENABLED"
	envOtelEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService     = "OTEL_SERVICE_NAME"
	envOtelInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"
	envShutdownTimeout = "SHUTDOWN_TIMEOUT"
	envAdminToken      = "ADMIN_TOKEN"

	defaultPort           = "4000"
	defaultServiceName    = "screen-inventory-service"
	defaultServiceVersion = "dev"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultFluentPort     = 24224
	defaultFluentTag      = "inventory"
	defaultFreshness      = 30 * Duration(time.Minute)
	defaultSweepInterval  = 5 * Duration(time.Minute)
	// Upstream SSP feeds refresh every few minutes; polling faster only burns quota.
	defaultPollInterval    = 5 * Duration(time.Minute)
	defaultSourcesFile     = "sources.yaml"
	defaultFetchTimeout    = 10 * Duration(time.Second)
	defaultRabbitExchange  = "inventory"
	defaultRabbitRouting   = "inventory.updated"
	defaultMetricsPort     = "9090"
	defaultShutdownTimeout = 10 * Duration(time.Second)
)
