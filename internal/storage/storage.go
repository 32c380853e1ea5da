package storage

import "context"

// FileStore is the boundary every media backend implements. Keys are
// slash-separated paths like "avatars/Ivan_a1b2.png"; Upload overwrites
// whatever already lives at the key.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
