package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	sharedConfig "github.com/helios-home/helios/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	RouterAPI sharedConfig.RouterAPIConfig `mapstructure:"router_api"`
	Scanning  sharedConfig.ScanningConfig  `mapstructure:"scanning"`
	Agent     sharedConfig.AgentConfig     `mapstructure:"agent"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
}

// Load loads configuration from the environment (prefix API, levels joined by _)
// and an optional YAML file under ./configs.
func Load(env string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")

	v.SetEnvPrefix("API")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The documented server variables are top-level (API_LISTEN_PORT, not
	// API_SERVER_LISTEN_PORT); bind them explicitly alongside the automatic
	// nested names.
	for key, envVar := range map[string]string{
		"server.listen_address": "API_LISTEN_ADDRESS",
		"server.listen_port":    "API_LISTEN_PORT",
		"server.base_url":       "API_BASE_URL",
	} {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envVar, err)
		}
	}

	setDefaults(v)

	// The config file is optional; env vars alone are a valid deployment.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0")
	v.SetDefault("server.listen_port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Router API defaults
	v.SetDefault("router_api.kind", "bbox")
	v.SetDefault("router_api.base_url", "")
	v.SetDefault("router_api.password", "")

	// Scanning defaults
	v.SetDefault("scanning.device_scan_delay", 60)

	// Agent download defaults
	v.SetDefault("agent.hello_world.download_base_url", "")
	v.SetDefault("agent.hello_world2.download_base_url", "")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
