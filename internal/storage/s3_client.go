package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"journey-chat/internal/domain/message"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	PresignTTL time.Duration
}

// Client turns attachment object keys into URLs clients can fetch.
// Uploads happen elsewhere; this side only reads.
type Client struct {
	cfg     S3Config
	s3      *s3.Client
	presign *s3.PresignClient
	logger  *zap.Logger
}

func NewClient(ctx context.Context, cfg S3Config, logger *zap.Logger) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if parsed, err := url.Parse(endpoint); err == nil {
				endpoint = parsed.String()
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		cfg:     cfg,
		s3:      s3Client,
		presign: s3.NewPresignClient(s3Client),
		logger:  logger,
	}, nil
}

// PresignGet returns a time-limited download URL for key.
func (c *Client) PresignGet(ctx context.Context, key string) (string, error) {
	if c == nil {
		return "", errors.New("s3 client not initialized")
	}
	if key == "" {
		return "", errors.New("object key is required")
	}
	presigned, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		if c.cfg.PresignTTL > 0 {
			po.Expires = c.cfg.PresignTTL
		}
	})
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

func (c *Client) FileURL(key string) string {
	if c == nil || key == "" {
		return ""
	}
	if c.cfg.PublicBase != "" {
		return strings.TrimRight(c.cfg.PublicBase, "/") + "/" + key
	}
	return ""
}

// ResolveAttachments fills URL for every attachment that carries an object
// key. Public buckets get a plain URL, private ones a presigned one. An
// attachment whose URL cannot be built keeps the URL it came with.
func (c *Client) ResolveAttachments(ctx context.Context, attachments []message.Attachment) []message.Attachment {
	if c == nil || len(attachments) == 0 {
		return attachments
	}
	out := make([]message.Attachment, len(attachments))
	for i, a := range attachments {
		out[i] = a
		if a.Key == "" {
			continue
		}
		if public := c.FileURL(a.Key); public != "" {
			out[i].URL = public
			continue
		}
		signed, err := c.PresignGet(ctx, a.Key)
		if err != nil {
			c.logger.Warn("failed to presign attachment", zap.String("key", a.Key), zap.Error(err))
			continue
		}
		out[i].URL = signed
	}
	return out
}
