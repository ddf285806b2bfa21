// internal/adapters/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

// ImportPrefix is the key prefix of purchase import uploads
const ImportPrefix = "imports/"

// New returns the store selected by cfg.Storage.Driver
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStorage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return NewS3Storage(ctx, &S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.S3Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		}, logger)
	case "local", "":
		return NewLocalStorage(cfg.Storage.LocalDir, logger)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// ImportKey names the stored upload for a purchase order import:
// imports/YYYY/MM/DD/<order>/<random><ext>
func ImportKey(orderID uuid.UUID, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s%s/%s/%s%s", ImportPrefix, now.UTC().Format("2006/01/02"), orderID, uuid.NewString(), ext)
}
