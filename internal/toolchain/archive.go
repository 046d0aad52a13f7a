package toolchain

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveSource fetches the bytes of an interpreter release archive named
// by key (e.g. "deno-x86_64-unknown-linux-gnu.zip"). JSSetup is agnostic to
// where the bytes come from.
type ArchiveSource interface {
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

// HTTPArchiveSource downloads archives from a public base URL (the GitHub
// releases CDN by default).
type HTTPArchiveSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPArchiveSource(baseURL string) *HTTPArchiveSource {
	return &HTTPArchiveSource{BaseURL: baseURL, Client: http.DefaultClient}
}

func (h *HTTPArchiveSource) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("build archive request: %w", err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch archive %s: %w", key, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch archive %s: unexpected status %s", key, resp.Status)
	}
	return resp.Body, nil
}

// S3ArchiveSource fetches archives from a private S3 bucket/prefix, for
// operators who mirror interpreter releases internally rather than
// depending on a public CDN at setup time.
type S3ArchiveSource struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3ArchiveSource(ctx context.Context, bucket, prefix string) (*S3ArchiveSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3ArchiveSource{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func (s *S3ArchiveSource) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch archive %s from s3://%s/%s: %w", key, s.bucket, s.prefix, err)
	}
	return out.Body, nil
}
