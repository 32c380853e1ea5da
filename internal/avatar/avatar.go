package avatar

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"github.com/disintegration/imaging"
	"github.com/mdobak/go-xerrors"
	"github.com/rowhe/blogdata/internal/storage"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"strings"
)

// Stored avatars are bounded to 200x200 pixels; larger uploads are scaled
// down in place after the profile row is saved.
const (
	MaxWidth  = 200
	MaxHeight = 200
)

var (
	ErrMissingAuthorName  = xerrors.Message("Author name is required to name an avatar")
	ErrNotAnImage         = xerrors.Message("Stored avatar is not a decodable image")
	ErrMissingPlaceholder = xerrors.Message("Placeholder avatar does not exist in the file store")
)

// Upload carries the raw bytes of a client-supplied avatar together with
// the original filename its extension is taken from.
type Upload struct {
	Filename string
	Data     []byte
}

// Pipeline names, stores and normalizes avatar images over a FileStore.
// Profiles saved without an upload keep the placeholder key, which the
// pipeline never rewrites.
type Pipeline struct {
	log         *slog.Logger
	store       storage.FileStore
	placeholder string
}

// NewPipeline fails when the placeholder object is missing from the store,
// so a misconfigured deployment surfaces at startup rather than on the
// first profile save.
func NewPipeline(ctx context.Context, store storage.FileStore, placeholderKey string, log *slog.Logger) (*Pipeline, error) {
	exists, err := store.Exists(ctx, placeholderKey)
	if err != nil {
		return nil, xerrors.New(err)
	}
	if !exists {
		return nil, xerrors.Newf("%w: %s", ErrMissingPlaceholder, placeholderKey)
	}

	return &Pipeline{
		log:         log,
		store:       store,
		placeholder: placeholderKey,
	}, nil
}

func (p *Pipeline) Placeholder() string {
	return p.placeholder
}

// HashedName derives the content-addressed storage key for an upload:
// avatars/{author name}_{md5 of the bytes}{original extension}. Identical
// bytes for the same author always produce the same key, any byte change
// produces a new one.
func (p *Pipeline) HashedName(authorName string, upload *Upload) (string, error) {
	if strings.TrimSpace(authorName) == "" {
		return "", xerrors.New(ErrMissingAuthorName)
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		return "", xerrors.Newf("unsupported avatar extension %q: %w", ext, err)
	}

	return fmt.Sprintf("avatars/%s_%x%s", authorName, md5.Sum(upload.Data), ext), nil
}

// Put writes the named upload to the file store. This write and the later
// Normalize are separate operations; a reader racing them can observe the
// original-dimension bytes in between.
func (p *Pipeline) Put(ctx context.Context, key string, data []byte) error {
	if err := p.store.Upload(ctx, key, data); err != nil {
		return xerrors.New(err)
	}
	return nil
}

// Normalize reads the avatar back from its stored key and bounds it to
// MaxWidth x MaxHeight in place, preserving the aspect ratio and the image
// format. Images already within bounds are left untouched, so re-running
// is a no-op; the placeholder key is skipped entirely.
func (p *Pipeline) Normalize(ctx context.Context, key string) error {
	if key == "" || key == p.placeholder {
		return nil
	}

	data, err := p.store.Download(ctx, key)
	if err != nil {
		return xerrors.New(err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return xerrors.Newf("%w: %s", ErrNotAnImage, err)
	}
	if cfg.Width <= MaxWidth && cfg.Height <= MaxHeight {
		return nil
	}

	format, err := imaging.FormatFromExtension(filepath.Ext(key))
	if err != nil {
		return xerrors.New(err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return xerrors.Newf("%w: %s", ErrNotAnImage, err)
	}

	thumbnail := imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, format); err != nil {
		return xerrors.New(err)
	}
	if err := p.store.Upload(ctx, key, buf.Bytes()); err != nil {
		return xerrors.New(err)
	}

	p.log.Debug("avatar normalized", "key", key, "width", thumbnail.Bounds().Dx(), "height", thumbnail.Bounds().Dy())
	return nil
}
