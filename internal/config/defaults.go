package config

const (
	defaultConfigPath         = "~/.config/hash/config.toml"
	projectConfigName         = "hash.toml"
	defaultAlgorithm          = "sha256"
	defaultWitnessPath        = "~/.epistemic/witness.jsonl"
	defaultLogFormat          = "auto"
	defaultLogLevel           = "warn"
	defaultProgressIntervalMS = 250

	// witnessPathEnv is shared by every tool writing the ledger.
	witnessPathEnv = "EPISTEMIC_WITNESS"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Hashing: Hashing{
			Algorithm: defaultAlgorithm,
		},
		Witness: Witness{
			Enabled: true,
			Path:    defaultWitnessPath,
		},
		Cache: Cache{
			Enabled: false,
			Path:    defaultCachePath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Progress: Progress{
			IntervalMS: defaultProgressIntervalMS,
		},
	}
}
