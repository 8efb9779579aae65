// Package media uploads incident attachments to S3-compatible storage and
// turns them into the media_url stored on the incident.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/dmitrijs2005/ireporter/internal/client/config"
	"github.com/google/uuid"
)

// MaxSize is the largest attachment accepted.
const MaxSize = 16 << 20

var (
	ErrDisabled = errors.New("media uploads are not configured")
	ErrTooLarge = fmt.Errorf("attachment exceeds %d MB", MaxSize>>20)
	ErrEmpty    = errors.New("attachment is empty")
)

// test seams
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// ObjectPutter is the part of *s3.Client the uploader uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	api     ObjectPutter
	bucket  string
	baseURL string
	now     func() time.Time
}

// New builds an uploader from the media settings. A custom endpoint (MinIO,
// localstack) switches the client to path-style addressing.
func New(ctx context.Context, m cfg.Media) (*Uploader, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(m.Region)}
	if m.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(m.AccessKey, m.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if m.Endpoint != "" {
			o.BaseEndpoint = aws.String(m.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithClient(client, m.Bucket, publicBase(m)), nil
}

// publicBase is where uploaded objects can be fetched from.
func publicBase(m cfg.Media) string {
	switch {
	case m.PublicBaseURL != "":
		return strings.TrimRight(m.PublicBaseURL, "/")
	case m.Endpoint != "":
		return strings.TrimRight(m.Endpoint, "/") + "/" + m.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", m.Bucket, m.Region)
	}
}

func NewWithClient(api ObjectPutter, bucket, publicBaseURL string) *Uploader {
	return &Uploader{api: api, bucket: bucket, baseURL: publicBaseURL, now: time.Now}
}

// StorageKey places an attachment under incidents/<yyyy>/<mm>/<dd>/ with a
// random name that keeps the original extension.
func StorageKey(now time.Time, name string) string {
	return fmt.Sprintf("incidents/%04d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.NewString(), strings.ToLower(filepath.Ext(name)))
}

// URL is the public address of key.
func (u *Uploader) URL(key string) string {
	return u.baseURL + "/" + key
}

// Upload stores data under a fresh key and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	key := StorageKey(u.now(), name)
	_, err := u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(name, data)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(name), err)
	}
	return u.URL(key), nil
}

// UploadFile reads path and uploads it.
func (u *Uploader) UploadFile(ctx context.Context, path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if st.Size() > MaxSize {
		return "", ErrTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return u.Upload(ctx, filepath.Base(path), data)
}

func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
