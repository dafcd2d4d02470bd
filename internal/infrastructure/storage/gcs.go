package storage

import (
	"context"
	"io"
	"path"

	gstorage "cloud.google.com/go/storage"

	"github.com/quranapp/backend/pkg/helpers"
)

// GCS uploads profile pictures to a Cloud Storage bucket and returns the
// object's public URL.
type GCS struct {
	Client *gstorage.Client
	Bucket string
	Prefix string
}

func NewGCS(client *gstorage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket, Prefix: "profile_pictures"}
}

func (s *GCS) Save(ctx context.Context, object, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.Client, s.Bucket, path.Join(s.Prefix, object), contentType, r)
}

var _ ProfileStorage = (*GCS)(nil)
