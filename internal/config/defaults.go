package config

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:     ":8080",
			APIToken: "dev-token",
		},
		Solver: SolverConfig{
			Tolerance:     1e-6,
			MaxIterations: 100,
			BracketLow:    -0.99,
			BracketHigh:   5.0,
		},
		Metrics: MetricsConfig{
			AnnualizeDSCR: false,
		},
		Sensitivity: SensitivityConfig{
			Workers:     8,
			CriticalBps: 500,
			HighBps:     200,
			MediumBps:   50,
		},
	}
}
