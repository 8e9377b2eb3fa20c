package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty store returns ErrStoreEmpty",
			config:  Config{Store: ""},
			wantErr: ErrStoreEmpty,
		},
		{
			name:    "unknown store returns ErrStoreUnknown",
			config:  Config{Store: "dynamo"},
			wantErr: ErrStoreUnknown,
		},
		{
			name:    "negative cache ttl rejected",
			config:  Config{Store: StoreCSV, CacheTTL: -time.Second},
			wantErr: ErrCacheTTLNegative,
		},
		{
			name:    "s3 without bucket rejected",
			config:  Config{Store: StoreS3},
			wantErr: ErrS3BucketEmpty,
		},
		{
			name:   "valid csv config",
			config: Config{Store: StoreCSV, CacheTTL: time.Minute},
		},
		{
			name:   "zero ttl means no cache and is valid",
			config: Config{Store: StoreSQLite},
		},
		{
			name:   "postgres with empty dsn is valid at config level",
			config: Config{Store: StorePostgres},
		},
		{
			name:   "s3 with bucket is valid",
			config: Config{Store: StoreS3, S3: S3Config{Bucket: "fleet-data"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
