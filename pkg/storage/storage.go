package storage

import "context"

// BlobStorage is the file storage collaborator: audio is read from it, and
// generated illustrations are written to it.
type BlobStorage interface {
	Read(ctx context.Context, reference string) ([]byte, error)
	Write(ctx context.Context, data []byte, filename string) (string, error)
	Delete(ctx context.Context, reference string) error
}
