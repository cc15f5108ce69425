package media

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API es el subconjunto del cliente S3 que usa el uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options agrupa la configuración de un bucket S3 o compatible (MinIO).
type S3Options struct {
	Region        string
	BaseEndpoint  string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// NewS3Client construye el cliente sin reintentos: una subida fallida se
// reporta de inmediato y el timeout lo impone el contexto del llamador.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
		o.RetryMaxAttempts = 1
	})
	return client, nil
}

// PublicURLBase resuelve la URL base desde la que se sirven los objetos.
func (o S3Options) PublicURLBase() string {
	if o.PublicBaseURL != "" {
		return strings.TrimRight(o.PublicBaseURL, "/")
	}
	if o.BaseEndpoint != "" {
		return joinURL(o.BaseEndpoint, o.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, o.Region)
}

// S3Uploader sube archivos a un bucket y devuelve su URL pública.
type S3Uploader struct {
	client  S3API
	bucket  string
	baseURL string
	prefix  string
	now     func() time.Time
}

func NewS3Uploader(client S3API, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		prefix:  "images",
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *S3Uploader) Upload(ctx context.Context, localPath string) (Asset, error) {
	if strings.TrimSpace(localPath) == "" {
		return Asset{}, ErrNoFile
	}
	contentType, ext, err := sniff(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("detect content type: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Asset{}, fmt.Errorf("stat upload: %w", err)
	}

	key := objectKey(u.prefix, u.now(), ext)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("put object: %w", err)
	}

	return Asset{
		URL:         joinURL(u.baseURL, key),
		Key:         key,
		ContentType: contentType,
	}, nil
}
