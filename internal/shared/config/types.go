package config

import "fmt"

type ServerConfig struct {
	ListenAddress  string   `mapstructure:"listen_address"`
	ListenPort     int      `mapstructure:"listen_port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.ListenAddress, s.ListenPort)
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RouterAPIConfig struct {
	Kind     string `mapstructure:"kind"`
	BaseURL  string `mapstructure:"base_url"`
	Password string `mapstructure:"password"`
}

type ScanningConfig struct {
	// DeviceScanDelay is the SyncDevices cadence in seconds.
	DeviceScanDelay int `mapstructure:"device_scan_delay"`
}

type AgentKindConfig struct {
	DownloadBaseURL string `mapstructure:"download_base_url"`
}

type AgentConfig struct {
	HelloWorld  AgentKindConfig `mapstructure:"hello_world"`
	HelloWorld2 AgentKindConfig `mapstructure:"hello_world2"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
