// Package s3link turns s3:// source locations into presigned HTTPS links so
// citations stay clickable for readers without bucket access.
package s3link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultExpiry is how long a presigned link stays valid.
const DefaultExpiry = time.Hour

// ErrInvalidURI indicates an s3:// URI without a bucket or key.
var ErrInvalidURI = errors.New("invalid s3 uri")

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Signer presigns GET requests for objects named by s3:// URIs.
type Signer struct {
	presigner presigner
	expiry    time.Duration
	logger    *slog.Logger
}

// New creates a Signer using the default AWS credential chain.
func New(ctx context.Context, region string, expiry time.Duration) (*Signer, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return newSigner(s3.NewPresignClient(client), expiry), nil
}

func newSigner(p presigner, expiry time.Duration) *Signer {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Signer{
		presigner: p,
		expiry:    expiry,
		logger:    slog.Default().With("component", "s3link"),
	}
}

// ResolveLink returns a presigned URL for s3:// URIs and any other URL unchanged.
func (s *Signer) ResolveLink(ctx context.Context, rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "s3://") {
		return rawURL, nil
	}

	bucket, key, err := ParseURI(rawURL)
	if err != nil {
		return "", err
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", rawURL, err)
	}
	s.logger.Debug("presigned source link", "bucket", bucket, "key", key)
	return req.URL, nil
}

// ParseURI splits s3://bucket/path/to/key into bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: scheme %q", ErrInvalidURI, u.Scheme)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	return bucket, key, nil
}
