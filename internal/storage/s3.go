package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	appconfig "crm-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver stores uploaded CSV files in an S3-compatible bucket so imports
// can be audited after the fact.
type Archiver struct {
	client *s3.Client
	bucket string
}

// NewArchiver builds an Archiver from config. Returns nil when storage is
// not configured; archival is optional.
func NewArchiver(cfg *appconfig.Config) *Archiver {
	if cfg.Storage.AccessKey == "" || cfg.Storage.Bucket == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		log.Printf("[Storage] Failed to configure S3 client: %v", err)
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
	})

	return &Archiver{client: client, bucket: cfg.Storage.Bucket}
}

// ArchiveImport uploads the raw CSV bytes under a per-tenant key and returns
// the object key.
func (a *Archiver) ArchiveImport(ctx context.Context, userID int, filename string, data []byte) (string, error) {
	key := fmt.Sprintf("imports/%d/%s-%s", userID, time.Now().UTC().Format("20060102-150405"), filename)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}
