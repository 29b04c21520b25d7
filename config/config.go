package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Storage  StorageConfig  `yaml:"storage"`
	Raffle   RaffleConfig   `yaml:"raffle"`
	Worker   WorkerConfig   `yaml:"worker"`
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
	PurchaseTopic      string   `yaml:"purchase_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// StorageConfig points at the S3-compatible object store holding
// proof-of-payment images. Endpoint and keys may be overridden from the
// environment (MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY).
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RaffleConfig struct {
	Name           string `yaml:"name"`
	TotalNumbers   int    `yaml:"total_numbers"`
	NumbersPerPage int    `yaml:"numbers_per_page"`
	PriceCents     int64  `yaml:"price_cents"`
	HoldTTLMinutes int    `yaml:"hold_ttl_minutes"`
	GridCacheTTL   int    `yaml:"grid_cache_ttl_seconds"`
	PixKey         string `yaml:"pix_key"`
	PixName        string `yaml:"pix_name"`
	PixBank        string `yaml:"pix_bank"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

const (
	placeholderEndpoint  = "minio.example.local:9000"
	placeholderAccessKey = "rifa-placeholder"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}

	// Missing storage credentials are a configuration error, but the
	// service still starts against placeholder values so the rest of
	// the API stays usable without the object store.
	if cfg.Storage.Endpoint == "" || cfg.Storage.AccessKey == "" {
		log.Println("config error: storage endpoint/access key not set, using placeholders")
		if cfg.Storage.Endpoint == "" {
			cfg.Storage.Endpoint = placeholderEndpoint
		}
		if cfg.Storage.AccessKey == "" {
			cfg.Storage.AccessKey = placeholderAccessKey
		}
	}

	if cfg.Raffle.TotalNumbers == 0 {
		cfg.Raffle.TotalNumbers = 300
	}
	if cfg.Raffle.NumbersPerPage == 0 {
		cfg.Raffle.NumbersPerPage = 100
	}
	if cfg.Raffle.PriceCents == 0 {
		cfg.Raffle.PriceCents = 1000
	}

	return &cfg, nil
}
