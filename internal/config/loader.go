package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, an optional yaml file, and
// environment overrides (ENGINE_HTTP_ADDR, ENGINE_DATABASE_DSN, ...).
// The file path comes from ENGINE_CONFIG, falling back to ./engine.yaml;
// a missing file is not an error
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("ENGINE_CONFIG")
	if path == "" {
		path = "engine.yaml"
	}
	if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if addr := v.GetString("http.addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if token := v.GetString("http.api_token"); token != "" {
		cfg.HTTP.APIToken = token
	}
	if dsn := v.GetString("database.dsn"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if workers := v.GetInt("sensitivity.workers"); workers > 0 {
		cfg.Sensitivity.Workers = workers
	}
}
