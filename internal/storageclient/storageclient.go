// Package storageclient defines the object-storage capability boundary:
// uploading ticket attachment photos to an S3-compatible bucket and
// handing back a public URL, grounded on the original Python service's
// MinIO-backed storage.py.
package storageclient

import "context"

// Client puts an object into a bucket and returns a URL a client can
// fetch it from directly.
type Client interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (publicURL string, err error)
}
