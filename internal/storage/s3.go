// Package storage publishes round images to S3 behind CloudFront.
package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kyiku/planet-jigsaw-back/internal/model"
)

// S3ClientInterface defines the interface for S3 operations.
type S3ClientInterface interface {
	PutObject(key string, data []byte) error
	ListObjects(prefix string) ([]string, error)
}

// RoundAssets holds the public URLs of one published round.
type RoundAssets struct {
	Prefix    string
	RasterURL string
	HintURL   string
	PieceURLs map[int]string
}

// S3Client wraps S3 operations for image storage.
type S3Client struct {
	client        S3ClientInterface
	bucket        string
	cloudfrontURL string
	hintSize      int
}

// NewS3Client creates a new S3Client.
func NewS3Client(client S3ClientInterface, bucket string, cloudfrontURL string) *S3Client {
	return &S3Client{
		client:        client,
		bucket:        bucket,
		cloudfrontURL: strings.TrimSuffix(cloudfrontURL, "/"),
		hintSize:      DefaultHintSize,
	}
}

// PublishRound uploads the raster, its hint thumbnail and every piece under a
// fresh prefix and returns their CloudFront URLs.
func (c *S3Client) PublishRound(raster image.Image, specs []model.PieceSpec) (*RoundAssets, error) {
	prefix := "rounds/" + uuid.New().String()
	assets := &RoundAssets{
		Prefix:    prefix,
		PieceURLs: make(map[int]string, len(specs)),
	}

	var err error
	if assets.RasterURL, err = c.uploadPNG(prefix+"/raster.png", raster); err != nil {
		return nil, err
	}
	if assets.HintURL, err = c.uploadPNG(prefix+"/hint.png", Thumbnail(raster, c.hintSize)); err != nil {
		return nil, err
	}

	for i := range specs {
		key := fmt.Sprintf("%s/pieces/%d.png", prefix, specs[i].ID)
		url, err := c.uploadPNG(key, specs[i].Pixels)
		if err != nil {
			return nil, err
		}
		assets.PieceURLs[specs[i].ID] = url
	}

	return assets, nil
}

// ListRound returns the object keys stored under a published round prefix.
func (c *S3Client) ListRound(prefix string) ([]string, error) {
	keys, err := c.client.ListObjects(strings.TrimSuffix(prefix, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to list round assets: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// URL returns the CloudFront URL for an object key.
func (c *S3Client) URL(key string) string {
	return fmt.Sprintf("%s/%s", c.cloudfrontURL, key)
}

func (c *S3Client) uploadPNG(key string, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := c.client.PutObject(key, data); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return c.URL(key), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
