// Package assets hosts user images (professional profile photos) on an
// S3-compatible bucket through presigned uploads.
package assets

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/config"
	"github.com/mindfulplus/mindful/internal/netx"
)

const presignTTL = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	uploadPresigned = netx.UploadToPresignedURL
)

type Host struct {
	cfg config.Assets
	now func() time.Time
}

func New(cfg config.Assets) *Host {
	return &Host{cfg: cfg, now: time.Now}
}

func (h *Host) Enabled() bool { return h != nil && h.cfg.Enabled() }

// PhotoKey is the object key of a new photo for uid.
func PhotoKey(uid, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("users/%s/photos/%d/%d/%d/%s%s", uid, now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

// ContentType guesses the MIME type from the file extension.
func ContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (h *Host) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(h.cfg.Region)}
	if h.cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(h.cfg.AccessKey, h.cfg.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if h.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(h.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}

// PresignPhotoUpload returns the object key and a presigned PUT URL valid
// for 15 minutes.
func (h *Host) PresignPhotoUpload(ctx context.Context, uid, filename string) (key, url string, err error) {
	if !h.Enabled() {
		return "", "", common.ErrNotConfigured
	}
	pc, err := h.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := h.cfg.Bucket
	key = PhotoKey(uid, filename, h.now())
	ct := ContentType(filename)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &ct,
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", "", err
	}
	return key, req.URL, nil
}

// PublicURL is where a stored object can be read. Without a public base URL
// it falls back to path-style endpoint/bucket/key.
func (h *Host) PublicURL(key string) string {
	if base := strings.TrimSuffix(h.cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	if ep := strings.TrimSuffix(h.cfg.Endpoint, "/"); ep != "" {
		return ep + "/" + h.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.cfg.Bucket, h.cfg.Region, key)
}

// UploadPhoto stores data as a new photo of uid and returns its public URL.
func (h *Host) UploadPhoto(ctx context.Context, uid, filename string, data []byte) (string, error) {
	key, url, err := h.PresignPhotoUpload(ctx, uid, filename)
	if err != nil {
		return "", err
	}
	if err := uploadPresigned(ctx, url, ContentType(filename), data); err != nil {
		return "", err
	}
	return h.PublicURL(key), nil
}
