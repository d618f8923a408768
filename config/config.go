package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	// Discount age thresholds. The child limit varies across airline
	// configurations, so it is a setting rather than a constant.
	ChildAgeLimit int `yaml:"child_age_limit"`
	ElderlyAgeMin int `yaml:"elderly_age_min"`

	SeatLockTTLSeconds  int `yaml:"seat_lock_ttl_seconds"`
	FlightsCacheTTLSecs int `yaml:"flights_cache_ttl_seconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.ChildAgeLimit == 0 {
		c.Booking.ChildAgeLimit = 2
	}
	if c.Booking.ElderlyAgeMin == 0 {
		c.Booking.ElderlyAgeMin = 65
	}
	if c.Booking.SeatLockTTLSeconds == 0 {
		c.Booking.SeatLockTTLSeconds = 30
	}
	if c.Booking.FlightsCacheTTLSecs == 0 {
		c.Booking.FlightsCacheTTLSecs = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
