package assets

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubAWS(t *testing.T) (captured *s3.PutObjectInput, opts *s3.Options, region *string) {
	t.Helper()
	origLoad, origNewS3, origNewPre, origPut, origUpload := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPutObject, uploadPresigned
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPutObject, uploadPresigned = origLoad, origNewS3, origNewPre, origPut, origUpload
	})

	captured = &s3.PutObjectInput{}
	opts = &s3.Options{}
	region = new(string)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		*region = lo.Region
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		*captured = *in
		return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + *in.Key}, nil
	}
	return captured, opts, region
}

func testCfg() config.Assets {
	return config.Assets{
		Bucket:    "photos",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "admin",
		SecretKey: "secret",
	}
}

func TestPresignPhotoUpload(t *testing.T) {
	captured, opts, region := stubAWS(t)
	h := New(testCfg())
	h.now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }

	key, url, err := h.PresignPhotoUpload(context.Background(), "u1", "Me.JPG")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^users/u1/photos/2025/5/1/[0-9a-f-]{36}\.jpg$`), key)
	assert.Equal(t, "https://signed.example/"+key, url)
	assert.Equal(t, "photos", *captured.Bucket)
	assert.Equal(t, "image/jpeg", *captured.ContentType)
	assert.Equal(t, "us-east-1", *region)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestPresignPhotoUpload_NotConfigured(t *testing.T) {
	_, _, err := New(config.Assets{}).PresignPhotoUpload(context.Background(), "u1", "a.png")
	require.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestPresignPhotoUpload_LoadConfigError(t *testing.T) {
	stubAWS(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, _, err := New(testCfg()).PresignPhotoUpload(context.Background(), "u1", "a.png")
	require.EqualError(t, err, "load-fail")
}

func TestUploadPhoto(t *testing.T) {
	stubAWS(t)
	var gotURL, gotCT string
	var gotBody []byte
	uploadPresigned = func(ctx context.Context, url, contentType string, body []byte) error {
		gotURL, gotCT, gotBody = url, contentType, body
		return nil
	}
	cfg := testCfg()
	cfg.PublicBaseURL = "https://cdn.example/"
	h := New(cfg)

	public, err := h.UploadPhoto(context.Background(), "u1", "p.png", []byte("img"))
	require.NoError(t, err)
	assert.Regexp(t, `^https://cdn\.example/users/u1/photos/`, public)
	assert.Regexp(t, `^https://signed\.example/users/u1/photos/`, gotURL)
	assert.Equal(t, "image/png", gotCT)
	assert.Equal(t, []byte("img"), gotBody)

	uploadPresigned = func(context.Context, string, string, []byte) error { return errors.New("403") }
	_, err = h.UploadPhoto(context.Background(), "u1", "p.png", nil)
	require.EqualError(t, err, "403")
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:9000/photos/k", New(testCfg()).PublicURL("k"))
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/k",
		New(config.Assets{Bucket: "photos", Region: "eu-west-1"}).PublicURL("k"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("a.PNG"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}
