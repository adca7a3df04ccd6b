package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	LLM      LLMConfig      `yaml:"llm"`
	RAG      RAGConfig      `yaml:"rag"`
	Booking  BookingConfig  `yaml:"booking"`
}

type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type HTTPConfig struct {
	Address              string `yaml:"address"`
	SwaggerDir           string `yaml:"swagger_dir"`
	MaxRequestsPerMinute int    `yaml:"max_requests_per_minute"`
	MaxUploadMB          int    `yaml:"max_upload_mb"`
	// TrustedProxies lists the CIDRs whose forwarding headers are believed
	// when resolving the client IP. Empty trusts none.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"ssl_mode"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func (d DatabaseConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
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

type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

const (
	VectorStorePGVector = "pgvector"
	VectorStoreMemory   = "memory"
)

type RAGConfig struct {
	TopK         int    `yaml:"top_k"`
	HistoryTurns int    `yaml:"history_turns"`
	VectorStore  string `yaml:"vector_store"`
}

type BookingConfig struct {
	DraftTTLMinutes int    `yaml:"draft_ttl_minutes"`
	Timezone        string `yaml:"timezone"`
}

func (b BookingConfig) DraftTTL() time.Duration {
	return time.Duration(b.DraftTTLMinutes) * time.Minute
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
	if c.App.Name == "" {
		c.App.Name = "ragbooking"
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.MaxRequestsPerMinute <= 0 {
		c.HTTP.MaxRequestsPerMinute = 120
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 20
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.TimeoutSeconds <= 0 {
		c.Database.TimeoutSeconds = 5
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "booking-notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "ragbooking-worker"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "deepseek-r1:1.5b"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "nomic-embed-text"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 20
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.HistoryTurns <= 0 {
		c.RAG.HistoryTurns = 6
	}
	if c.RAG.VectorStore == "" {
		c.RAG.VectorStore = VectorStorePGVector
	}
	if c.Booking.DraftTTLMinutes <= 0 {
		c.Booking.DraftTTLMinutes = 60
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "Asia/Kathmandu"
	}
}
