package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Store struct {
		Backend string `yaml:"backend"` // rest or clickhouse
		REST    struct {
			BaseURL        string        `yaml:"base_url"`
			APIKey         string        `yaml:"api_key"`
			PointTimeout   time.Duration `yaml:"point_timeout"`
			WindowTimeout  time.Duration `yaml:"window_timeout"`
			MetricsTable   string        `yaml:"metrics_table"`
			BaselinesTable string        `yaml:"baselines_table"`
			AlertsTable    string        `yaml:"alerts_table"`
		} `yaml:"rest"`
	} `yaml:"store"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		AlertTopic   string   `yaml:"alert_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		SummaryTTL time.Duration `yaml:"summary_ttl"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Monitoring struct {
		BaselineName string  `yaml:"baseline_name"`
		WindowDays   int     `yaml:"window_days"`
		Thresholds   struct {
			Low    float64 `yaml:"low"`
			Medium float64 `yaml:"medium"`
			High   float64 `yaml:"high"`
		} `yaml:"thresholds"`
	} `yaml:"monitoring"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("STORE_BASE_URL"); v != "" {
		c.Store.REST.BaseURL = v
	}
	if v := os.Getenv("STORE_API_KEY"); v != "" {
		c.Store.REST.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("BASELINE_NAME"); v != "" {
		c.Monitoring.BaselineName = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Store.Backend == "" {
		return fmt.Errorf("store.backend is required")
	}
	if c.Store.Backend != "rest" && c.Store.Backend != "clickhouse" {
		return fmt.Errorf("store.backend must be 'rest' or 'clickhouse', got '%s'", c.Store.Backend)
	}
	if c.Store.Backend == "rest" && c.Store.REST.BaseURL == "" {
		return fmt.Errorf("store.rest.base_url is required")
	}
	if c.Store.Backend == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	t := c.Monitoring.Thresholds
	if t.Low != 0 || t.Medium != 0 || t.High != 0 {
		if !(t.Low < t.Medium && t.Medium < t.High) {
			return fmt.Errorf("monitoring.thresholds must satisfy low < medium < high, got (%v, %v, %v)", t.Low, t.Medium, t.High)
		}
	}
	if c.Monitoring.WindowDays < 0 {
		return fmt.Errorf("monitoring.window_days cannot be negative")
	}
	return nil
}

// BaselineName returns the configured baseline name or the default.
func (c *Config) BaselineName() string {
	if c.Monitoring.BaselineName == "" {
		return "7day_rolling"
	}
	return c.Monitoring.BaselineName
}

// PointTimeout returns the point-read timeout or the 10s default.
func (c *Config) PointTimeout() time.Duration {
	if c.Store.REST.PointTimeout <= 0 {
		return 10 * time.Second
	}
	return c.Store.REST.PointTimeout
}

// WindowTimeout returns the window-read timeout or the 30s default.
func (c *Config) WindowTimeout() time.Duration {
	if c.Store.REST.WindowTimeout <= 0 {
		return 30 * time.Second
	}
	return c.Store.REST.WindowTimeout
}
