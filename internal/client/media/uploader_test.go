package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/dmitrijs2005/ireporter/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	last *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.last = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestStorageKey(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	key := StorageKey(now, "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "incidents/2024/05/01/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotEqual(t, key, StorageKey(now, "Photo.JPG"))
}

func TestUploader_Upload(t *testing.T) {
	api := &fakePutter{}
	u := NewWithClient(api, "evidence", "https://cdn.example.com")

	url, err := u.Upload(context.Background(), "scan.png", []byte("\x89PNG\r\n\x1a\n...."))
	require.NoError(t, err)

	require.NotNil(t, api.last)
	assert.Equal(t, "evidence", aws.ToString(api.last.Bucket))
	assert.Equal(t, "image/png", aws.ToString(api.last.ContentType))
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(api.last.Key), url)
	assert.Equal(t, int64(len(api.body)), aws.ToInt64(api.last.ContentLength))
}

func TestUploader_Rejects(t *testing.T) {
	api := &fakePutter{}
	u := NewWithClient(api, "b", "https://x")
	ctx := context.Background()

	_, err := u.Upload(ctx, "a.txt", nil)
	require.ErrorIs(t, err, ErrEmpty)

	_, err = u.Upload(ctx, "a.bin", make([]byte, MaxSize+1))
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Nil(t, api.last)

	api.err = errors.New("denied")
	_, err = u.Upload(ctx, "a.txt", []byte("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.txt")
}

func TestUploader_UploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("witness statement"), 0o600))

	api := &fakePutter{}
	u := NewWithClient(api, "b", "https://x")
	_, err := u.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "witness statement", string(api.body))
	assert.True(t, strings.HasPrefix(aws.ToString(api.last.ContentType), "text/plain"))

	_, err = u.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNew_Disabled(t *testing.T) {
	_, err := New(context.Background(), cfg.Media{})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestNew_AppliesSettings(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(c aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	u, err := New(context.Background(), cfg.Media{
		Bucket: "evidence", Region: "eu-west-1", Endpoint: "http://minio:9000",
		AccessKey: "minio", SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://minio:9000/evidence/k", u.URL("k"))

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err = New(context.Background(), cfg.Media{Bucket: "b", Region: "us-east-1"})
	assert.ErrorContains(t, err, "no config")
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBase(cfg.Media{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://b.s3.us-east-1.amazonaws.com", publicBase(cfg.Media{Bucket: "b", Region: "us-east-1"}))
}

// TestNew_AgainstS3Endpoint runs a real PutObject against a local stand-in
// for an S3-compatible server.
func TestNew_AgainstS3Endpoint(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))

	u, err := New(context.Background(), cfg.Media{
		Bucket: "evidence", Region: "us-east-1", Endpoint: srv.URL,
		AccessKey: "test", SecretKey: "test-secret",
	})
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), "report.txt", []byte("evidence body"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(path, "/evidence/incidents/"), path)
	assert.Contains(t, string(body), "evidence body")
	assert.Equal(t, srv.URL+path, url)
}
