package types

import (
	"errors"
	"time"
)

// Supported store names.
const (
	StoreCSV      = "csv"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreSheet    = "sheet"
	StoreS3       = "s3"
	StoreMemory   = "memory"
)

// Config holds store selection and parameters for store.Open plus the
// process-wide knobs (cache TTL, data directory, audit trail).
type Config struct {
	Store    string         `json:"store" yaml:"store"`
	CacheTTL time.Duration  `json:"cache_ttl" yaml:"cache_ttl"`
	DataDir  string         `json:"data_dir" yaml:"data_dir"`
	Audit    bool           `json:"audit" yaml:"audit"`
	CSV      CSVConfig      `json:"csv" yaml:"csv"`
	SQLite   SQLiteConfig   `json:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`
	Sheet    SheetConfig    `json:"sheet" yaml:"sheet"`
	S3       S3Config       `json:"s3" yaml:"s3"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}

// CSVConfig parameterizes the flat-file store. ReadOnly models hosting
// platforms where the checkout cannot be written.
type CSVConfig struct {
	Path     string `json:"path" yaml:"path"`
	ReadOnly bool   `json:"read_only" yaml:"read_only"`
}

// SQLiteConfig parameterizes the embedded database store. An empty Path
// defaults to lpgtrack.db inside the data directory.
type SQLiteConfig struct {
	Path string `json:"path" yaml:"path"`
}

// PostgresConfig parameterizes the hosted-table store. An empty DSN falls
// back to the store's default local DSN.
type PostgresConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

// SheetConfig parameterizes the spreadsheet store.
type SheetConfig struct {
	Path      string `json:"path" yaml:"path"`
	Worksheet string `json:"worksheet" yaml:"worksheet"`
}

// S3Config parameterizes the object-storage store. Endpoint and PathStyle
// support S3-compatible servers such as MinIO. When AccessKeyID is empty the
// SDK's default credential chain applies.
type S3Config struct {
	Bucket          string `json:"bucket" yaml:"bucket"`
	Key             string `json:"key" yaml:"key"`
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	PathStyle       bool   `json:"path_style" yaml:"path_style"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// ServerConfig parameterizes the HTTP API.
type ServerConfig struct {
	Addr  string `json:"addr" yaml:"addr"`
	Debug bool   `json:"debug" yaml:"debug"`
}

// Config validation errors.
var (
	ErrStoreEmpty       = errors.New("store must not be empty")
	ErrStoreUnknown     = errors.New("unknown store")
	ErrCacheTTLNegative = errors.New("cache ttl must not be negative")
	ErrS3BucketEmpty    = errors.New("s3 bucket must not be empty")
)

// knownStores lists the store names that Validate accepts.
var knownStores = map[string]bool{
	StoreCSV:      true,
	StoreSQLite:   true,
	StorePostgres: true,
	StoreSheet:    true,
	StoreS3:       true,
	StoreMemory:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Store == "" {
		return ErrStoreEmpty
	}
	if !knownStores[c.Store] {
		return ErrStoreUnknown
	}
	if c.CacheTTL < 0 {
		return ErrCacheTTLNegative
	}
	if c.Store == StoreS3 && c.S3.Bucket == "" {
		return ErrS3BucketEmpty
	}
	return nil
}
