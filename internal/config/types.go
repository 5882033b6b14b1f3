package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Rules     RulesConfig     `yaml:"rules" mapstructure:"rules"`
	Dirs      DirsConfig      `yaml:"dirs" mapstructure:"dirs"`
	Watcher   WatcherConfig   `yaml:"watcher" mapstructure:"watcher"`
	Limits    LimitsConfig    `yaml:"limits" mapstructure:"limits"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// RulesConfig locates the anonymization rule file
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DirsConfig contains the directories the pipeline and watcher operate on
type DirsConfig struct {
	Input   string `yaml:"input" mapstructure:"input"`
	Output  string `yaml:"output" mapstructure:"output"`
	Scratch string `yaml:"scratch" mapstructure:"scratch"`
}

// WatcherConfig contains folder watcher configuration
type WatcherConfig struct {
	// StableAttempts and StableDelay control how long the watcher waits for
	// a newly created file to stop growing before processing it.
	StableAttempts int           `yaml:"stable_attempts" mapstructure:"stable_attempts"`
	StableDelay    time.Duration `yaml:"stable_delay" mapstructure:"stable_delay"`
}

// LimitsConfig contains upload and request limits
type LimitsConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	RequestsPerMin int   `yaml:"requests_per_min" mapstructure:"requests_per_min"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Path           string        `yaml:"path" mapstructure:"path"`
	PingInterval   time.Duration `yaml:"ping_interval" mapstructure:"ping_interval"`
	PongTimeout    time.Duration `yaml:"pong_timeout" mapstructure:"pong_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxMessageSize int64         `yaml:"max_message_size" mapstructure:"max_message_size"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Rules: RulesConfig{
			Path: "configs/rules.yaml",
		},
		Dirs: DirsConfig{
			Input:   "input",
			Output:  "output",
			Scratch: "",
		},
		Watcher: WatcherConfig{
			StableAttempts: 6,
			StableDelay:    500 * time.Millisecond,
		},
		Limits: LimitsConfig{
			MaxUploadBytes: 32 << 20, // 32 MB
			RequestsPerMin: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			Path:           "/ws",
			PingInterval:   54 * time.Second,
			PongTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxMessageSize: 512,
		},
	}
}
