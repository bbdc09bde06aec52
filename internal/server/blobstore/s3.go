package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// objectAPI is the part of *s3.Client the store calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicBaseURL prefixes every location: {PublicBaseURL}/{Bucket}/{key}.
	PublicBaseURL string
	// PresignTTL > 0 makes URL hand out presigned GETs instead of the raw
	// location.
	PresignTTL time.Duration
}

// S3Store keeps blobs in an S3-compatible bucket (AWS, MinIO).
type S3Store struct {
	client     objectAPI
	presign    *s3.PresignClient
	bucket     string
	prefix     string
	presignTTL time.Duration
	now        func() time.Time
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, newS3PresignClient(client), cfg), nil
}

func newS3Store(client objectAPI, presign *s3.PresignClient, cfg S3Config) *S3Store {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(cfg.Endpoint, "/")
	}
	return &S3Store{
		client:     client,
		presign:    presign,
		bucket:     cfg.Bucket,
		prefix:     base + "/" + cfg.Bucket + "/",
		presignTTL: cfg.PresignTTL,
		now:        time.Now,
	}
}

func (s *S3Store) location(key string) string { return s.prefix + key }

func (s *S3Store) key(location string) (string, error) {
	key, ok := strings.CutPrefix(location, s.prefix)
	if !ok || key == "" {
		return "", ErrBlobNotFound
	}
	return key, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

func (s *S3Store) Put(ctx context.Context, in PutInput) (string, error) {
	key := StorageKey(in, s.now())

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          in.Body,
		ContentLength: aws.Int64(in.Size),
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object to S3: %w", err)
	}
	return s.location(key), nil
}

func (s *S3Store) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to head object: %w", err)
	}
	return out, nil
}

// Get answers with a redirect; bytes never flow through the server.
func (s *S3Store) Get(ctx context.Context, location string) (*Object, error) {
	key, err := s.key(location)
	if err != nil {
		return nil, err
	}

	head, err := s.head(ctx, key)
	if err != nil {
		return nil, err
	}

	url, err := s.URL(ctx, location)
	if err != nil {
		return nil, err
	}

	obj := &Object{RedirectURL: url, Size: aws.ToInt64(head.ContentLength)}
	if head.LastModified != nil {
		obj.ModTime = *head.LastModified
	}
	return obj, nil
}

func (s *S3Store) Delete(ctx context.Context, location string) error {
	key, err := s.key(location)
	if err != nil {
		return err
	}

	if _, err := s.head(ctx, key); err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

func (s *S3Store) URL(ctx context.Context, location string) (string, error) {
	if s.presignTTL <= 0 {
		return location, nil
	}

	key, err := s.key(location)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}
