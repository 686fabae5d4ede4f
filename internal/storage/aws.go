package storage

import (
	"bytes"
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Adapter adapts the AWS S3 client to S3ClientInterface.
type S3Adapter struct {
	client *s3.Client
	bucket string
}

// NewS3Adapter loads the default AWS configuration for region.
func NewS3Adapter(ctx context.Context, region, bucket string) (*S3Adapter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3Adapter{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// PutObject uploads a PNG object.
func (a *S3Adapter) PutObject(key string, data []byte) error {
	_, err := a.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: stringPtr("image/png"),
	})
	return err
}

// ListObjects returns the keys under prefix.
func (a *S3Adapter) ListObjects(prefix string) ([]string, error) {
	output, err := a.client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket: &a.bucket,
		Prefix: &prefix,
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(output.Contents))
	for _, obj := range output.Contents {
		keys = append(keys, *obj.Key)
	}
	return keys, nil
}

func stringPtr(s string) *string {
	return &s
}
