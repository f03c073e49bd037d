package storage

import (
	"context"
	"testing"

	"vidsphere/internal/pkg/errors"
)

func TestNewProviderSelectsBackend(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Config{Bucket: "media", Region: "us-east-1"})
	if err != nil {
		t.Fatalf("NewProvider(default) error = %v", err)
	}
	if p.Provider() != ProviderS3 {
		t.Fatalf("default provider = %q", p.Provider())
	}

	p, err = NewProvider(ctx, Config{Provider: "LocalFS", Bucket: "media", LocalRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("NewProvider(localfs) error = %v", err)
	}
	if p.Provider() != ProviderLocalFS {
		t.Fatalf("provider = %q", p.Provider())
	}
}

func TestNewProviderValidates(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown", Config{Provider: "ftp", Bucket: "b"}},
		{"localfs without root", Config{Provider: ProviderLocalFS, Bucket: "b"}},
		{"s3 without bucket", Config{Provider: ProviderS3}},
		{"gdrive without credentials", Config{Provider: ProviderGDrive, Bucket: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(ctx, tt.cfg); !errors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
