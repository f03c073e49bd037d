package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vidsphere/internal/adapters/storage/gdrive"
	"vidsphere/internal/adapters/storage/localfs"
	"vidsphere/internal/adapters/storage/s3"
	"vidsphere/internal/pkg/errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	ProviderS3      = "s3"
	ProviderLocalFS = "localfs"
	ProviderGDrive  = "gdrive"
)

// Config selects and configures one blob store backend.
type Config struct {
	Provider string
	Bucket   string

	// s3
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	HeaderTimeout  time.Duration // bounds waiting for response headers only; 0 means unbounded

	// localfs
	LocalRoot string

	// gdrive
	GDriveClientID     string
	GDriveClientSecret string
	GDriveRefreshToken string
	GDriveFolderID     string
}

func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderS3
	}

	switch provider {
	case ProviderS3:
		c, err := s3.New(s3.Config{
			Endpoint:       cfg.Endpoint,
			Region:         cfg.Region,
			Bucket:         cfg.Bucket,
			AccessKey:      cfg.AccessKey,
			SecretKey:      cfg.SecretKey,
			UseSSL:         cfg.UseSSL,
			HeaderTimeout:  cfg.HeaderTimeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil

	case ProviderLocalFS:
		if cfg.LocalRoot == "" {
			return nil, errors.ValidationField("STORAGE_LOCAL_ROOT", "STORAGE_LOCAL_ROOT is required for localfs")
		}
		return localfs.New(cfg.LocalRoot, cfg.Bucket), nil

	case ProviderGDrive:
		return newGDriveProvider(ctx, cfg)

	default:
		return nil, errors.Validationf("unknown storage provider: %s", provider).
			WithField("STORAGE_PROVIDER", provider)
	}
}

func newGDriveProvider(ctx context.Context, cfg Config) (Provider, error) {
	for k, v := range map[string]string{
		"GDRIVE_CLIENT_ID":     cfg.GDriveClientID,
		"GDRIVE_CLIENT_SECRET": cfg.GDriveClientSecret,
		"GDRIVE_REFRESH_TOKEN": cfg.GDriveRefreshToken,
	} {
		if v == "" {
			return nil, errors.ValidationField(k, k+" is required for gdrive")
		}
	}

	conf := &oauth2.Config{
		ClientID:     cfg.GDriveClientID,
		ClientSecret: cfg.GDriveClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: cfg.GDriveRefreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gdrive service: %w", err)
	}

	return gdrive.NewClient(srv, cfg.GDriveFolderID), nil
}
