package documents

import (
	"bytes"
	"context"
	"path"
	"time"

	"github.com/techcodex100/BOb-from/pkg/storage"
)

// StorageProvider archives generated documents. A provider without a bucket
// is disabled.
type StorageProvider struct {
	s3     storage.S3Client
	bucket string
	prefix string
}

func NewStorageProvider(s3 storage.S3Client, bucket, prefix string) *StorageProvider {
	return &StorageProvider{
		s3:     s3,
		bucket: bucket,
		prefix: prefix,
	}
}

// Enabled reports whether archiving is configured.
func (p *StorageProvider) Enabled() bool {
	return p != nil && p.s3 != nil && p.bucket != ""
}

// Archive uploads doc and returns its object key.
func (p *StorageProvider) Archive(ctx context.Context, doc *GeneratedDocument) (string, error) {
	key := p.GenerateS3Key(doc)
	if err := p.s3.Upload(ctx, p.bucket, key, ContentTypePDF, bytes.NewReader(doc.Content)); err != nil {
		return "", err
	}
	return key, nil
}

func (p *StorageProvider) GenerateS3Key(doc *GeneratedDocument) string {
	day := doc.CreatedAt.UTC().Format("2006/01/02")
	return path.Join(p.prefix, doc.TemplateID, day, doc.ID.String()+"-"+doc.Filename)
}

// archiveTimeout bounds a single upload.
const archiveTimeout = 30 * time.Second
