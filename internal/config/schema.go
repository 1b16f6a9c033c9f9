package config

// Config represents the full engine configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Database    DatabaseConfig    `yaml:"database" mapstructure:"database"`
	Solver      SolverConfig      `yaml:"solver" mapstructure:"solver"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
	Sensitivity SensitivityConfig `yaml:"sensitivity" mapstructure:"sensitivity"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	APIToken string `yaml:"api_token" mapstructure:"api_token"`
}

// DatabaseConfig configures optional analysis run persistence.
// An empty DSN disables persistence entirely
type DatabaseConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// SolverConfig configures the IRR root finder
type SolverConfig struct {
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"`
	BracketLow    float64 `yaml:"bracket_low" mapstructure:"bracket_low"`
	BracketHigh   float64 `yaml:"bracket_high" mapstructure:"bracket_high"`
}

// MetricsConfig configures metric conventions
type MetricsConfig struct {
	// AnnualizeDSCR reports one DSCR per year instead of one per period,
	// for callers comparing against an annual covenant threshold
	AnnualizeDSCR bool `yaml:"annualize_dscr" mapstructure:"annualize_dscr"`
}

// SensitivityConfig configures the scenario grid and tiering policy
type SensitivityConfig struct {
	Workers     int     `yaml:"workers" mapstructure:"workers"`
	CriticalBps float64 `yaml:"critical_bps" mapstructure:"critical_bps"`
	HighBps     float64 `yaml:"high_bps" mapstructure:"high_bps"`
	MediumBps   float64 `yaml:"medium_bps" mapstructure:"medium_bps"`
}
