// Package objectstore publishes finished audit reports to an S3-compatible
// bucket. Publication is best effort: a run never fails because the bucket
// was unreachable.
package objectstore

import (
	"context"
	"path"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/config"
)

type Client struct {
	mc     *minio.Client
	bucket string
	prefix string
}

func New(cfg config.ObjectStore) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Client{mc: mc, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// PublishReport uploads one report file under <prefix>/<runID>/<basename>.
func (c *Client) PublishReport(ctx context.Context, runID, filePath string) error {
	key := path.Join(c.prefix, runID, path.Base(filePath))
	_, err := c.mc.FPutObject(ctx, c.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"bucket": c.bucket, "key": key}).Info("Report published")
	return nil
}

// PublishAll uploads every path, logging and continuing past individual
// failures. It returns the number of reports that made it up.
func (c *Client) PublishAll(ctx context.Context, runID string, paths []string) int {
	published := 0
	for _, p := range paths {
		if err := c.PublishReport(ctx, runID, p); err != nil {
			log.WithFields(log.Fields{"path": p, "error": err}).Warn("Failed to publish report")
			continue
		}
		published++
	}
	return published
}
