package config

import "time"

// Config is the root configuration of schema-forge.
type Config struct {
	// Database is the connection used for schema introspection.
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Dialect selects the DDL dialect: "generic", "mysql" or "postgres".
	// When empty it follows Database.Type.
	Dialect string `yaml:"dialect,omitempty" json:"dialect,omitempty"`

	Introspection IntrospectionConfig `yaml:"introspection" json:"introspection"`
	Snapshot      SnapshotConfig      `yaml:"snapshot" json:"snapshot"`
	Publish       PublishConfig       `yaml:"publish" json:"publish"`
	Log           LogConfig           `yaml:"log" json:"log"`
}

// DatabaseConfig contains configuration for the database being inspected.
type DatabaseConfig struct {
	// Type is "mysql" or "postgres".
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// SSLMode is passed to PostgreSQL as sslmode.
	SSLMode string `yaml:"ssl_mode,omitempty" json:"ssl_mode,omitempty"`

	MaxOpenConns      int           `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitempty"`
	MaxIdleConns      int           `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitempty"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitempty"`
	ConnMaxIdleTime   time.Duration `yaml:"conn_max_idle_time,omitempty" json:"conn_max_idle_time,omitempty"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout,omitempty" json:"connection_timeout,omitempty"`
}

// IntrospectionConfig tunes how catalog rows are interpreted.
type IntrospectionConfig struct {
	// ConvertTinyintToBool maps tinyint columns to boolean.
	ConvertTinyintToBool bool `yaml:"convert_tinyint_to_bool" json:"convert_tinyint_to_bool"`

	// Schema restricts introspection to a named schema instead of the
	// connection's current one.
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// SnapshotConfig configures where introspected schemas are stored.
type SnapshotConfig struct {
	// Type is "memory", "redis" or "dynamodb".
	Type string `yaml:"type" json:"type"`

	// Namespace prefixes every key: {namespace}:schema:{table}.
	Namespace string `yaml:"namespace" json:"namespace"`

	Redis    RedisConfig    `yaml:"redis,omitempty" json:"redis,omitempty"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb,omitempty" json:"dynamodb,omitempty"`
}

// RedisConfig contains Redis-specific configuration.
type RedisConfig struct {
	Endpoints    []string      `yaml:"endpoints" json:"endpoints"`
	Password     string        `yaml:"password,omitempty" json:"password,omitempty"`
	DB           int           `yaml:"db,omitempty" json:"db,omitempty"`
	PoolSize     int           `yaml:"pool_size,omitempty" json:"pool_size,omitempty"`
	MinIdleConns int           `yaml:"min_idle_conns,omitempty" json:"min_idle_conns,omitempty"`
	DialTimeout  time.Duration `yaml:"dial_timeout,omitempty" json:"dial_timeout,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`
}

// DynamoDBConfig contains DynamoDB-specific configuration.
type DynamoDBConfig struct {
	Region          string `yaml:"region" json:"region"`
	TableName       string `yaml:"table_name" json:"table_name"`
	Endpoint        string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
}

// PublishConfig configures publishing of generated DDL batches.
type PublishConfig struct {
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Kafka   KafkaConfig `yaml:"kafka" json:"kafka"`
}

// KafkaConfig contains configuration for the Kafka producer.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers" json:"brokers"`
	Topic        string        `yaml:"topic" json:"topic"`
	BatchSize    int           `yaml:"batch_size" json:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout" json:"batch_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`

	// RequiredAcks is 0, 1, or -1 for all replicas.
	RequiredAcks int `yaml:"required_acks" json:"required_acks"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}
