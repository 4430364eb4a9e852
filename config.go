package nilability

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config consolidates engine, metadata source and logging settings
type Config struct {
	Metadata  MetadataConfig    `json:"metadata"`
	Inference InferenceConfig   `json:"inference"`
	Database  DatabaseConfig    `json:"database"`
	DuckDB    DuckDBConfig      `json:"duckdb"`
	S3        S3Config          `json:"s3"`
	Logging   LoggingConfig     `json:"logging"`
	Options   map[string]string `json:"options,omitempty"`
}

// MetadataSource selects where record documents are read from.
type MetadataSource string

const (
	MetadataSourceFile MetadataSource = "file"
	MetadataSourceS3   MetadataSource = "s3"
)

// ColumnSourceKind selects where column nullability is introspected from.
type ColumnSourceKind string

const (
	ColumnSourceNone     ColumnSourceKind = "none"
	ColumnSourcePostgres ColumnSourceKind = "postgres"
	ColumnSourceDuckDB   ColumnSourceKind = "duckdb"
)

// MetadataConfig contains snapshot loading settings
type MetadataConfig struct {
	Source          MetadataSource   `json:"source"`
	SchemaDirectory string           `json:"schemaDirectory"`
	ColumnSource    ColumnSourceKind `json:"columnSource"`
	// RelationshipsRequiredByDefault is applied to documents that do not set
	// relationshipsRequiredByDefault themselves.
	RelationshipsRequiredByDefault bool `json:"relationshipsRequiredByDefault"`
	// IncludeUndocumentedTables exposes database tables without a document as column-only records.
	IncludeUndocumentedTables bool          `json:"includeUndocumentedTables"`
	LoadTimeout               time.Duration `json:"loadTimeout"`
}

// InferenceConfig contains decision policy switches
type InferenceConfig struct {
	// HasOneConsultsForeignKeyConstraint makes owned-to-one relationships
	// required when the owner's foreign key column is NOT NULL.
	HasOneConsultsForeignKeyConstraint bool `json:"hasOneConsultsForeignKeyConstraint"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Database        string        `json:"database"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"sslMode"`
	Schema          string        `json:"schema"`
	UseIAM          bool          `json:"useIAM"`
	Region          string        `json:"region"`
	MaxConnections  int           `json:"maxConnections"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime"`
	Timeout         time.Duration `json:"timeout"`
}

// DuckDBConfig contains DuckDB introspection settings
type DuckDBConfig struct {
	DBPath       string        `json:"dbPath"`
	Schema       string        `json:"schema"`
	QueryTimeout time.Duration `json:"queryTimeout"`
}

// S3Config contains settings for the S3 snapshot source
type S3Config struct {
	Region       string `json:"region"`
	Bucket       string `json:"bucket"`
	Key          string `json:"key"`
	Endpoint     string `json:"endpoint"`
	AccessKey    string `json:"accessKey"`
	SecretKey    string `json:"secretKey"`
	UsePathStyle bool   `json:"usePathStyle"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json or console
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Metadata: MetadataConfig{
			Source:                         MetadataSourceFile,
			SchemaDirectory:                "schemas",
			ColumnSource:                   ColumnSourceNone,
			RelationshipsRequiredByDefault: true,
			IncludeUndocumentedTables:      false,
			LoadTimeout:                    30 * time.Second,
		},
		Inference: InferenceConfig{
			HasOneConsultsForeignKeyConstraint: true,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			Schema:          "public",
			MaxConnections:  4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Timeout:         10 * time.Second,
		},
		DuckDB: DuckDBConfig{
			DBPath:       "",
			Schema:       "main",
			QueryTimeout: 10 * time.Second,
		},
		S3: S3Config{
			Key: "snapshot.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads a JSON config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Metadata.Source {
	case MetadataSourceFile:
		if c.Metadata.SchemaDirectory == "" {
			return &ConfigError{Field: "metadata.schemaDirectory", Message: "is required for the file source"}
		}
	case MetadataSourceS3:
		if c.S3.Bucket == "" {
			return &ConfigError{Field: "s3.bucket", Message: "is required for the s3 source"}
		}
		if c.S3.Key == "" {
			return &ConfigError{Field: "s3.key", Message: "is required for the s3 source"}
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			return &ConfigError{Field: "s3.accessKey", Message: "accessKey and secretKey must be set together"}
		}
	default:
		return &ConfigError{Field: "metadata.source", Message: fmt.Sprintf("unsupported source %q", c.Metadata.Source)}
	}

	switch c.Metadata.ColumnSource {
	case "", ColumnSourceNone:
	case ColumnSourcePostgres:
		if c.Database.Host == "" {
			return &ConfigError{Field: "database.host", Message: "is required for the postgres column source"}
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return &ConfigError{Field: "database.port", Message: "must be a valid TCP port"}
		}
		if c.Database.MaxConnections <= 0 {
			return &ConfigError{Field: "database.maxConnections", Message: "must be greater than 0"}
		}
		if c.Database.UseIAM && c.Database.Region == "" {
			return &ConfigError{Field: "database.region", Message: "is required when useIAM is set"}
		}
	case ColumnSourceDuckDB:
		if c.DuckDB.QueryTimeout <= 0 {
			return &ConfigError{Field: "duckdb.queryTimeout", Message: "must be greater than 0"}
		}
	default:
		return &ConfigError{Field: "metadata.columnSource", Message: fmt.Sprintf("unsupported column source %q", c.Metadata.ColumnSource)}
	}

	if c.Metadata.IncludeUndocumentedTables && (c.Metadata.ColumnSource == "" || c.Metadata.ColumnSource == ColumnSourceNone) {
		return &ConfigError{Field: "metadata.includeUndocumentedTables", Message: "requires a column source"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
