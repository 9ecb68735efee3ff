// Package config loads and validates schema-forge configuration from
// defaults, YAML/JSON files and environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rzpsarthak13/schema-forge/internal/ddl"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "SCHEMA_FORGE_"

// Manager handles loading and managing configuration from various sources.
type Manager struct {
	config *Config
}

// NewManager creates a configuration manager holding the defaults.
func NewManager() *Manager {
	return &Manager{config: Default()}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:              "postgres",
			Host:              "localhost",
			Port:              5432,
			MaxOpenConns:      5,
			MaxIdleConns:      2,
			ConnMaxLifetime:   5 * time.Minute,
			ConnMaxIdleTime:   10 * time.Minute,
			ConnectionTimeout: 10 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Type:      "memory",
			Namespace: "schema-forge",
			Redis: RedisConfig{
				Endpoints:    []string{"localhost:6379"},
				PoolSize:     10,
				MinIdleConns: 1,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
		},
		Publish: PublishConfig{
			Kafka: KafkaConfig{
				Brokers:      []string{"localhost:9092"},
				Topic:        "schema-forge-ddl",
				BatchSize:    100,
				BatchTimeout: 10 * time.Millisecond,
				WriteTimeout: 10 * time.Second,
				RequiredAcks: -1,
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Config returns the current configuration.
func (m *Manager) Config() *Config {
	return m.config
}

// LoadFromFile loads configuration from a YAML or JSON file.
// The format is chosen by extension (.yaml, .yml, or .json).
func (m *Manager) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		return m.LoadFromYAML(data)
	case ".json":
		return m.LoadFromJSON(data)
	default:
		return fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
}

// LoadFromYAML loads configuration from YAML data layered over the defaults.
func (m *Manager) LoadFromYAML(data []byte) error {
	cfg := Default()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	return m.apply(cfg)
}

// LoadFromJSON loads configuration from JSON data layered over the defaults.
func (m *Manager) LoadFromJSON(data []byte) error {
	cfg := Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}
	return m.apply(cfg)
}

// LoadFromEnv overrides the current configuration with environment variables
// of the form SCHEMA_FORGE_<SECTION>_<KEY>, for example:
//   - SCHEMA_FORGE_DATABASE_TYPE=mysql
//   - SCHEMA_FORGE_DATABASE_HOST=db.internal
//   - SCHEMA_FORGE_SNAPSHOT_TYPE=redis
//   - SCHEMA_FORGE_PUBLISH_KAFKA_BROKERS=k1:9092,k2:9092
func (m *Manager) LoadFromEnv() error {
	cfg := *m.config

	setString(&cfg.Dialect, "DIALECT")

	setString(&cfg.Database.Type, "DATABASE_TYPE")
	setString(&cfg.Database.Host, "DATABASE_HOST")
	setInt(&cfg.Database.Port, "DATABASE_PORT")
	setString(&cfg.Database.Database, "DATABASE_DATABASE")
	setString(&cfg.Database.Username, "DATABASE_USERNAME")
	setString(&cfg.Database.Password, "DATABASE_PASSWORD")
	setString(&cfg.Database.SSLMode, "DATABASE_SSL_MODE")
	setInt(&cfg.Database.MaxOpenConns, "DATABASE_MAX_OPEN_CONNS")
	setInt(&cfg.Database.MaxIdleConns, "DATABASE_MAX_IDLE_CONNS")
	setDuration(&cfg.Database.ConnectionTimeout, "DATABASE_CONNECTION_TIMEOUT")

	setBool(&cfg.Introspection.ConvertTinyintToBool, "INTROSPECTION_CONVERT_TINYINT_TO_BOOL")
	setString(&cfg.Introspection.Schema, "INTROSPECTION_SCHEMA")

	setString(&cfg.Snapshot.Type, "SNAPSHOT_TYPE")
	setString(&cfg.Snapshot.Namespace, "SNAPSHOT_NAMESPACE")
	setList(&cfg.Snapshot.Redis.Endpoints, "SNAPSHOT_REDIS_ENDPOINTS")
	setString(&cfg.Snapshot.Redis.Password, "SNAPSHOT_REDIS_PASSWORD")
	setInt(&cfg.Snapshot.Redis.DB, "SNAPSHOT_REDIS_DB")
	setString(&cfg.Snapshot.DynamoDB.Region, "SNAPSHOT_DYNAMODB_REGION")
	setString(&cfg.Snapshot.DynamoDB.TableName, "SNAPSHOT_DYNAMODB_TABLE_NAME")
	setString(&cfg.Snapshot.DynamoDB.Endpoint, "SNAPSHOT_DYNAMODB_ENDPOINT")

	setBool(&cfg.Publish.Enabled, "PUBLISH_ENABLED")
	setList(&cfg.Publish.Kafka.Brokers, "PUBLISH_KAFKA_BROKERS")
	setString(&cfg.Publish.Kafka.Topic, "PUBLISH_KAFKA_TOPIC")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setBool(&cfg.Log.Development, "LOG_DEVELOPMENT")

	return m.apply(&cfg)
}

func (m *Manager) apply(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	m.config = cfg
	return nil
}

// DialectName returns the configured dialect, falling back to the database type.
func (c *Config) DialectName() string {
	if c.Dialect != "" {
		return c.Dialect
	}
	return c.Database.Type
}

// Validate checks cfg and returns the first problem found.
func Validate(cfg *Config) error {
	switch cfg.Database.Type {
	case "mysql", "postgres", "postgresql":
	case "":
		return fmt.Errorf("database.type is required")
	default:
		return fmt.Errorf("database.type must be 'mysql' or 'postgres'")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535")
	}
	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be greater than 0")
	}
	if _, err := ddl.LookupDialect(cfg.DialectName()); err != nil {
		return fmt.Errorf("dialect: %w", err)
	}

	switch cfg.Snapshot.Type {
	case "memory":
	case "redis":
		if len(cfg.Snapshot.Redis.Endpoints) == 0 {
			return fmt.Errorf("snapshot.redis.endpoints is required when snapshot.type is 'redis'")
		}
	case "dynamodb":
		if cfg.Snapshot.DynamoDB.Region == "" {
			return fmt.Errorf("snapshot.dynamodb.region is required when snapshot.type is 'dynamodb'")
		}
		if cfg.Snapshot.DynamoDB.TableName == "" {
			return fmt.Errorf("snapshot.dynamodb.table_name is required when snapshot.type is 'dynamodb'")
		}
	default:
		return fmt.Errorf("snapshot.type must be 'memory', 'redis', or 'dynamodb'")
	}

	if cfg.Publish.Enabled {
		if len(cfg.Publish.Kafka.Brokers) == 0 {
			return fmt.Errorf("publish.kafka.brokers is required when publishing is enabled")
		}
		if cfg.Publish.Kafka.Topic == "" {
			return fmt.Errorf("publish.kafka.topic is required when publishing is enabled")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val == "true" || val == "1"
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func setList(dst *[]string, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = strings.Split(val, ",")
	}
}
