package avatar

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/rowhe/blogdata/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeholderKey = "avatars/unnamed.png"

func imageBytes(t *testing.T, width, height int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func newPipeline(t *testing.T) (*Pipeline, storage.FileStore) {
	t.Helper()
	store, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, placeholderKey, imageBytes(t, 200, 200, imaging.PNG)))

	pipeline, err := NewPipeline(ctx, store, placeholderKey, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return pipeline, store
}

func dimensions(t *testing.T, store storage.FileStore, key string) (int, int) {
	t.Helper()
	data, err := store.Download(context.Background(), key)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestNewPipelineRequiresPlaceholder(t *testing.T) {
	store, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	_, err = NewPipeline(context.Background(), store, placeholderKey, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, ErrMissingPlaceholder)
}

func TestHashedNameIsContentAddressed(t *testing.T) {
	pipeline, _ := newPipeline(t)

	data := imageBytes(t, 300, 400, imaging.PNG)
	upload := &Upload{Filename: "portrait.png", Data: data}

	first, err := pipeline.HashedName("Ivan", upload)
	require.NoError(t, err)
	second, err := pipeline.HashedName("Ivan", upload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fmt.Sprintf("avatars/Ivan_%x.png", md5.Sum(data)), first)

	changed := append([]byte(nil), data...)
	changed[len(changed)-1] ^= 0x01
	renamed, err := pipeline.HashedName("Ivan", &Upload{Filename: "portrait.png", Data: changed})
	require.NoError(t, err)
	assert.NotEqual(t, first, renamed)
}

func TestHashedNameRequiresAuthorName(t *testing.T) {
	pipeline, _ := newPipeline(t)

	upload := &Upload{Filename: "portrait.png", Data: []byte("x")}
	for _, name := range []string{"", "   "} {
		_, err := pipeline.HashedName(name, upload)
		assert.ErrorIs(t, err, ErrMissingAuthorName, "name %q", name)
	}
}

func TestHashedNameExtensionHandling(t *testing.T) {
	pipeline, _ := newPipeline(t)

	_, err := pipeline.HashedName("Ivan", &Upload{Filename: "avatar.exe", Data: []byte("x")})
	assert.Error(t, err)

	_, err = pipeline.HashedName("Ivan", &Upload{Filename: "avatar", Data: []byte("x")})
	assert.Error(t, err)

	key, err := pipeline.HashedName("Ivan", &Upload{Filename: "AVATAR.PNG", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("avatars/Ivan_%x.png", md5.Sum([]byte("x"))), key)
}

func TestNormalizeResizesLargeImage(t *testing.T) {
	pipeline, store := newPipeline(t)
	ctx := context.Background()

	key := "avatars/Ivan_abc.png"
	require.NoError(t, pipeline.Put(ctx, key, imageBytes(t, 300, 400, imaging.PNG)))
	require.NoError(t, pipeline.Normalize(ctx, key))

	width, height := dimensions(t, store, key)
	assert.Equal(t, 150, width)
	assert.Equal(t, 200, height)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	pipeline, store := newPipeline(t)
	ctx := context.Background()

	key := "avatars/Ivan_abc.png"
	require.NoError(t, pipeline.Put(ctx, key, imageBytes(t, 200, 200, imaging.PNG)))
	require.NoError(t, pipeline.Normalize(ctx, key))

	width, height := dimensions(t, store, key)
	assert.Equal(t, 200, width)
	assert.Equal(t, 200, height)

	before, err := store.Download(ctx, key)
	require.NoError(t, err)
	require.NoError(t, pipeline.Normalize(ctx, key))
	after, err := store.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNormalizeSkipsPlaceholder(t *testing.T) {
	pipeline, store := newPipeline(t)
	ctx := context.Background()

	oversized := imageBytes(t, 400, 400, imaging.PNG)
	require.NoError(t, store.Upload(ctx, placeholderKey, oversized))

	require.NoError(t, pipeline.Normalize(ctx, placeholderKey))
	require.NoError(t, pipeline.Normalize(ctx, ""))

	got, err := store.Download(ctx, placeholderKey)
	require.NoError(t, err)
	assert.Equal(t, oversized, got)
}

func TestNormalizeFailsOnCorruptBytes(t *testing.T) {
	pipeline, _ := newPipeline(t)
	ctx := context.Background()

	key := "avatars/Ivan_bad.png"
	require.NoError(t, pipeline.Put(ctx, key, []byte("definitely not an image")))

	err := pipeline.Normalize(ctx, key)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestNormalizeFailsOnMissingKey(t *testing.T) {
	pipeline, _ := newPipeline(t)

	err := pipeline.Normalize(context.Background(), "avatars/ghost.png")
	assert.Error(t, err)
}

func TestNormalizePreservesFormat(t *testing.T) {
	pipeline, store := newPipeline(t)
	ctx := context.Background()

	key := "avatars/Ivan_abc.jpg"
	require.NoError(t, pipeline.Put(ctx, key, imageBytes(t, 640, 480, imaging.JPEG)))
	require.NoError(t, pipeline.Normalize(ctx, key))

	data, err := store.Download(ctx, key)
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	width, height := dimensions(t, store, key)
	assert.Equal(t, 200, width)
	assert.Equal(t, 150, height)
}
