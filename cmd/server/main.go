package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/factory"
	"go.uber.org/zap"
)

// runtimeLoader builds a fresh runtime from the current configuration.
type runtimeLoader func(ctx context.Context) (*factory.Runtime, error)

// Server represents the HTTP server over a loaded metadata snapshot
type Server struct {
	mu      sync.RWMutex
	runtime *factory.Runtime
	load    runtimeLoader
	mux     *http.ServeMux
}

// NewServer creates a new Server instance
func NewServer(runtime *factory.Runtime, load runtimeLoader) *Server {
	return &Server{
		runtime: runtime,
		load:    load,
		mux:     http.NewServeMux(),
	}
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/v1/reload", s.handleReload)
	s.mux.HandleFunc("/api/v1/records", s.handleListRecords)
	s.mux.HandleFunc("/api/v1/records/", s.recordsHandler)
}

// Start starts the HTTP server on the given port
func (s *Server) Start(port string) error {
	zap.S().Infow("starting server", "port", port)
	return http.ListenAndServe(":"+port, s.mux)
}

func (s *Server) current() *factory.Runtime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runtime
}

// swap installs next and closes the runtime it replaces.
func (s *Server) swap(next *factory.Runtime) {
	s.mu.Lock()
	prev := s.runtime
	s.runtime = next
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	config, err := loadConfigFromEnv()
	if err != nil {
		sugar.Fatalf("failed to load configuration: %v", err)
	}
	sugar.Infow("configuration loaded",
		"source", config.Metadata.Source,
		"schemaDir", config.Metadata.SchemaDirectory,
		"columnSource", config.Metadata.ColumnSource)

	load := func(ctx context.Context) (*factory.Runtime, error) {
		return factory.NewRuntimeWithConfig(ctx, config)
	}

	runtime, err := load(context.Background())
	if err != nil {
		sugar.Fatalf("failed to load metadata: %v", err)
	}

	server := NewServer(runtime, load)
	server.RegisterRoutes()
	defer server.swap(nil)

	port := getEnv("PORT", "8080")
	if err := server.Start(port); err != nil {
		sugar.Fatalf("server error: %v", err)
	}
}

// loadConfigFromEnv reads CONFIG_FILE when set, then applies environment overrides.
func loadConfigFromEnv() (*nilability.Config, error) {
	config := nilability.DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := nilability.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.Metadata.Source = nilability.MetadataSource(getEnv("METADATA_SOURCE", string(config.Metadata.Source)))
	config.Metadata.SchemaDirectory = getEnv("SCHEMA_DIR", config.Metadata.SchemaDirectory)
	config.Metadata.ColumnSource = nilability.ColumnSourceKind(getEnv("COLUMN_SOURCE", string(config.Metadata.ColumnSource)))
	config.Metadata.RelationshipsRequiredByDefault = getEnvBool("RELATIONSHIPS_REQUIRED_BY_DEFAULT", config.Metadata.RelationshipsRequiredByDefault)
	config.Metadata.IncludeUndocumentedTables = getEnvBool("INCLUDE_UNDOCUMENTED_TABLES", config.Metadata.IncludeUndocumentedTables)
	config.Inference.HasOneConsultsForeignKeyConstraint = getEnvBool("HAS_ONE_CONSULTS_FK_CONSTRAINT", config.Inference.HasOneConsultsForeignKeyConstraint)

	config.Database.Host = getEnv("DB_HOST", config.Database.Host)
	config.Database.Port = getEnvInt("DB_PORT", config.Database.Port)
	config.Database.Database = getEnv("DB_NAME", config.Database.Database)
	config.Database.Username = getEnv("DB_USER", config.Database.Username)
	config.Database.Password = getEnv("DB_PASSWORD", config.Database.Password)
	config.Database.SSLMode = getEnv("DB_SSL_MODE", config.Database.SSLMode)
	config.Database.Schema = getEnv("DB_SCHEMA", config.Database.Schema)
	config.Database.UseIAM = getEnvBool("DB_USE_IAM", config.Database.UseIAM)
	config.Database.Region = getEnv("DB_REGION", config.Database.Region)
	config.Database.MaxConnections = getEnvInt("DB_MAX_CONNECTIONS", config.Database.MaxConnections)
	config.Database.Timeout = time.Duration(getEnvInt("DB_TIMEOUT_SECONDS", int(config.Database.Timeout/time.Second))) * time.Second

	config.DuckDB.DBPath = getEnv("DUCKDB_PATH", config.DuckDB.DBPath)
	config.DuckDB.Schema = getEnv("DUCKDB_SCHEMA", config.DuckDB.Schema)

	config.S3.Region = getEnv("S3_REGION", config.S3.Region)
	config.S3.Bucket = getEnv("S3_BUCKET", config.S3.Bucket)
	config.S3.Key = getEnv("S3_KEY", config.S3.Key)
	config.S3.Endpoint = getEnv("S3_ENDPOINT", config.S3.Endpoint)
	config.S3.AccessKey = getEnv("S3_ACCESS_KEY", config.S3.AccessKey)
	config.S3.SecretKey = getEnv("S3_SECRET_KEY", config.S3.SecretKey)
	config.S3.UsePathStyle = getEnvBool("S3_USE_PATH_STYLE", config.S3.UsePathStyle)

	if config.Options == nil {
		config.Options = map[string]string{}
	}
	if v := os.Getenv("ACTIVE_RECORD_ASSOCIATION_TYPES"); v != "" {
		config.Options[nilability.OptionKeyAssociationTypes] = v
	}
	if v := os.Getenv("ACTIVE_RECORD_COLUMN_TYPES"); v != "" {
		config.Options[nilability.OptionKeyColumnTypes] = v
	}

	return config, config.Validate()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
