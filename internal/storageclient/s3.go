package storageclient

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is the reference Client: puts objects into an S3-compatible
// bucket (AWS S3, or a MinIO endpoint configured via BaseEndpoint). Bucket
// creation is an operator concern, not something this client does lazily.
type S3Client struct {
	api      *s3.Client
	bucket   string
	endpoint string
	useSSL   bool
}

func NewS3Client(api *s3.Client, bucket, endpoint string, useSSL bool) *S3Client {
	return &S3Client{api: api, bucket: bucket, endpoint: endpoint, useSSL: useSSL}
}

// Put uploads data under key and returns a URL the client can fetch it
// from directly — folder/uuid.ext keys, the same shape the original
// service generates (spec.md §9, storage client boundary).
func (c *S3Client) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	scheme := "https"
	if !c.useSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.endpoint, c.bucket, key), nil
}
