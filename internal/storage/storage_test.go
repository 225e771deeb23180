package storage_test

import (
	"testing"

	"github.com/andresuchdata/procuresmart/backend-go/internal/config"
	"github.com/andresuchdata/procuresmart/backend-go/internal/storage"
)

func TestFilterSpreadsheets(t *testing.T) {
	in := []storage.ObjectInfo{
		{Key: "inventory/2024-05.xlsx"},
		{Key: "inventory/readme.txt"},
		{Key: "inventory/export.CSV"},
		{Key: "inventory/macro.xlsm"},
		{Key: "inventory/"},
	}

	got := storage.FilterSpreadsheets(in)
	want := []string{"inventory/2024-05.xlsx", "inventory/export.CSV", "inventory/macro.xlsm"}
	if len(got) != len(want) {
		t.Fatalf("expected %d objects, got %d: %+v", len(want), len(got), got)
	}
	for i, key := range want {
		if got[i].Key != key {
			t.Errorf("object %d: expected %q, got %q", i, key, got[i].Key)
		}
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "missing endpoint", cfg: config.StorageConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, wantErr: true},
		{name: "missing credentials", cfg: config.StorageConfig{Endpoint: "localhost:9000", Bucket: "b"}, wantErr: true},
		{name: "missing bucket", cfg: config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, wantErr: true},
		{name: "scheme is stripped", cfg: config.StorageConfig{Endpoint: "http://localhost:9000/", AccessKey: "a", SecretKey: "s", Bucket: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.NewMinioClient(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
