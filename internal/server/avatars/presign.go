// Package avatars hands out presigned object-storage URLs for profile
// pictures. Clients upload directly to the bucket; the server only stores
// the object key.
package avatars

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Upload is a presigned PUT the client performs itself.
type Upload struct {
	Key string
	URL string
}

// Presigner signs avatar URLs for one bucket.
type Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
	now    func() time.Time
}

// NewPresigner builds an S3 presign client with static credentials from cfg.
// No request reaches object storage until a presigned URL is used.
func NewPresigner(ctx context.Context, cfg *config.Config) (*Presigner, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.S3Bucket,
		expiry: cfg.S3PresignExpiry,
		now:    time.Now,
	}, nil
}

// NewKey returns a fresh object key for a user's avatar.
func (p *Presigner) NewKey(userID, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported avatar content type %q", common.ErrorValidation, contentType)
	}
	d := p.now().UTC()
	return fmt.Sprintf("avatars/%s/%d/%02d/%s%s", userID, d.Year(), d.Month(), uuid.NewString(), ext), nil
}

// PresignUpload returns a key and a presigned PUT URL for it. The client must
// send the same Content-Type it declared here.
func (p *Presigner) PresignUpload(ctx context.Context, userID, contentType string) (*Upload, error) {
	key, err := p.NewKey(userID, contentType)
	if err != nil {
		return nil, err
	}

	req, err := presignPutObject(p.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return nil, fmt.Errorf("%w: presign put: %v", common.ErrorUpstream, err)
	}

	return &Upload{Key: key, URL: req.URL}, nil
}

// PresignDownload returns a presigned GET URL for key.
func (p *Presigner) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(p.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("%w: presign get: %v", common.ErrorUpstream, err)
	}
	return req.URL, nil
}
