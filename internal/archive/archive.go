package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/petermazzocco/prompt-image-app/internal/config"
	"github.com/petermazzocco/prompt-image-app/models"
)

const contentType = "image/jpeg"

// Archiver keeps a copy of a prompt's image outside the database.
type Archiver interface {
	Archive(ctx context.Context, prompt *models.Prompt) error
}

// Nop is used when archiving is disabled.
type Nop struct{}

func (Nop) Archive(context.Context, *models.Prompt) error { return nil }

// ObjectPutter is the subset of *s3.Client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads images to an S3-compatible bucket such as R2.
type S3Archiver struct {
	client ObjectPutter
	bucket string
}

func NewS3Archiver(client ObjectPutter, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

// New returns an S3Archiver when cfg names a bucket and Nop otherwise.
func New(ctx context.Context, cfg config.ArchiveConfig, httpClient *http.Client) (Archiver, error) {
	if !cfg.Enabled() {
		return Nop{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(httpClient),
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	endpoint := cfg.BaseEndpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Archiver(client, cfg.Bucket), nil
}

// Key is the object key of a prompt's image.
func Key(prompt *models.Prompt) string {
	return fmt.Sprintf("images/%d/%s.jpg", prompt.UserID, prompt.UUID)
}

func (a *S3Archiver) Archive(ctx context.Context, prompt *models.Prompt) error {
	key := Key(prompt)
	obj, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(prompt.ImageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	slog.Info("image archived", "key", key, "etag", aws.ToString(obj.ETag))
	return nil
}
