package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// PutObjectAPI is the slice of the S3 client S3Sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the bucket and credentials for S3Sink.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Sink archives artifacts into an S3 bucket under Prefix/name.
type S3Sink struct {
	API    PutObjectAPI
	Bucket string
	Prefix string
}

// NewS3Sink builds an S3 client from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Sink{API: client, Bucket: cfg.Bucket, Prefix: cfg.Prefix}, nil
}

// Key returns the object key used for name.
func (s *S3Sink) Key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

func (s *S3Sink) Save(ctx context.Context, name string, payload []byte) error {
	_, err := s.API.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.Bucket),
		Key:                aws.String(s.Key(name)),
		Body:               bytes.NewReader(payload),
		ContentLength:      aws.Int64(int64(len(payload))),
		ContentType:        aws.String(mimetype.Detect(payload).String()),
		ContentDisposition: aws.String(attachmentDisposition(name)),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", s.Bucket, s.Key(name), err)
	}
	return nil
}
