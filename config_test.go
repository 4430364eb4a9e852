package nilability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	assert.Equal(t, MetadataSourceFile, config.Metadata.Source)
	assert.Equal(t, "schemas", config.Metadata.SchemaDirectory)
	assert.Equal(t, ColumnSourceNone, config.Metadata.ColumnSource)
	assert.True(t, config.Metadata.RelationshipsRequiredByDefault)
	assert.Equal(t, 30*time.Second, config.Metadata.LoadTimeout)
	assert.True(t, config.Inference.HasOneConsultsForeignKeyConstraint)
	assert.Equal(t, 5432, config.Database.Port)
	assert.Equal(t, "main", config.DuckDB.Schema)
	assert.Equal(t, "info", config.Logging.Level)

	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"metadata": {"schemaDirectory": "records", "columnSource": "duckdb"},
		"inference": {"hasOneConsultsForeignKeyConstraint": false},
		"duckdb": {"dbPath": "catalog.duckdb"},
		"options": {"ActiveRecordColumnTypes": "nilable"}
	}`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "records", config.Metadata.SchemaDirectory)
	assert.Equal(t, ColumnSourceDuckDB, config.Metadata.ColumnSource)
	assert.False(t, config.Inference.HasOneConsultsForeignKeyConstraint)
	assert.Equal(t, "catalog.duckdb", config.DuckDB.DBPath)
	assert.Equal(t, 10*time.Second, config.DuckDB.QueryTimeout)
	assert.Equal(t, "nilable", config.Options[OptionKeyColumnTypes])
	assert.NoError(t, config.Validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "empty schema directory", mutate: func(c *Config) { c.Metadata.SchemaDirectory = "" }, field: "metadata.schemaDirectory"},
		{name: "unknown source", mutate: func(c *Config) { c.Metadata.Source = "ftp" }, field: "metadata.source"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Metadata.Source = MetadataSourceS3 }, field: "s3.bucket"},
		{name: "s3 half credentials", mutate: func(c *Config) {
			c.Metadata.Source = MetadataSourceS3
			c.S3.Bucket = "snapshots"
			c.S3.AccessKey = "AKIA"
		}, field: "s3.accessKey"},
		{name: "postgres bad port", mutate: func(c *Config) {
			c.Metadata.ColumnSource = ColumnSourcePostgres
			c.Database.Port = 0
		}, field: "database.port"},
		{name: "postgres iam without region", mutate: func(c *Config) {
			c.Metadata.ColumnSource = ColumnSourcePostgres
			c.Database.UseIAM = true
		}, field: "database.region"},
		{name: "duckdb without timeout", mutate: func(c *Config) {
			c.Metadata.ColumnSource = ColumnSourceDuckDB
			c.DuckDB.QueryTimeout = 0
		}, field: "duckdb.queryTimeout"},
		{name: "unknown column source", mutate: func(c *Config) { c.Metadata.ColumnSource = "mysql" }, field: "metadata.columnSource"},
		{name: "undocumented tables without column source", mutate: func(c *Config) { c.Metadata.IncludeUndocumentedTables = true }, field: "metadata.includeUndocumentedTables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
