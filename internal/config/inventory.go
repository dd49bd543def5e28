package config

// InventoryConfig controls the store and its background loops.
type InventoryConfig struct {
	FreshnessWindow Duration
	SweepInterval   Duration
	PollInterval    Duration
	FetchTimeout    Duration
	SourcesFile     string
}

func loadInventory() InventoryConfig {
	return InventoryConfig{
		FreshnessWindow: durationEnvOrDefault(envFreshness, defaultFreshness),
		SweepInterval:   durationEnvOrDefault(envSweepInterval, defaultSweepInterval),
		PollInterval:    durationEnvOrDefault(envPollInterval, defaultPollInterval),
		FetchTimeout:    durationEnvOrDefault(envFetchTimeout, defaultFetchTimeout),
		SourcesFile:     envOrDefault(envSourcesFile, defaultSourcesFile),
	}
}
