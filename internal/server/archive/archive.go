// Package archive copies file payloads into an S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/models"
	sc "github.com/dmitrijs2005/fe/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newObjectID = uuid.NewString
)

// S3Archiver writes file payloads to a bucket. A nil *S3Archiver does
// nothing.
type S3Archiver struct {
	client *s3.Client
	bucket string
	logger logging.Logger
}

func New(ctx context.Context, cfg *sc.Config, l logging.Logger) (*S3Archiver, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		// MinIO and most self-hosted stores need path-style addressing.
		o.UsePathStyle = true
	})

	return &S3Archiver{
		client: client,
		bucket: cfg.S3Bucket,
		logger: l.With("module", "archive"),
	}, nil
}

// ObjectKey is where a file message is archived.
func ObjectKey(m models.Message, objectID string) string {
	name := path.Base(strings.ReplaceAll(m.PayloadName, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = "file"
	}
	return fmt.Sprintf("messages/%s/%d/%s-%s", m.Receiver, m.ID, objectID, name)
}

// ArchiveFile uploads m's content. Failures are logged.
func (a *S3Archiver) ArchiveFile(ctx context.Context, m models.Message) {
	if a == nil {
		return
	}

	key := ObjectKey(m, newObjectID())
	_, err := putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(m.Content),
		ContentType: aws.String(m.PayloadType),
		Metadata: map[string]string{
			"sender":   m.Sender,
			"receiver": m.Receiver,
		},
	})
	if err != nil {
		a.logger.Warn(ctx, "archive file", "error", err, "id", m.ID, "key", key)
		return
	}

	a.logger.Debug(ctx, "file archived", "id", m.ID, "bucket", a.bucket, "key", key)
}
