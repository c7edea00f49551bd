package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/julilatch/rs-api/config"
	"github.com/julilatch/rs-api/model"
	"github.com/julilatch/rs-api/pkg/logger"
)

// ArchiveService stores documents whose pipeline failed in an
// S3-compatible bucket so they can be replayed or inspected later.
type ArchiveService struct {
	client *minio.Client
	bucket string
	config *config.ArchiveConfig
}

func NewArchiveService(cfg *config.ArchiveConfig) (*ArchiveService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ArchiveService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *ArchiveService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// ArchiveFailed uploads the source bytes of a failed document under
// errors/<name>. Best effort: an upload error is logged, never propagated
// back into the pipeline.
func (s *ArchiveService) ArchiveFailed(ctx context.Context, doc model.Document, reason error) {
	objectName := s.ObjectName(doc.Name)

	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(doc.Data), int64(len(doc.Data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		logger.Error(ctx, "failed to archive document",
			"file", doc.Name,
			"object", objectName,
			"error", err,
		)
		return
	}

	logger.Info(ctx, "failed document archived",
		"file", doc.Name,
		"object", objectName,
		"reason", reason,
	)
}

// ObjectName returns the bucket key used for a failed document.
func (s *ArchiveService) ObjectName(fileName string) string {
	return fmt.Sprintf("errors/%s", fileName)
}
