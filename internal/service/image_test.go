package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	img, err := service.DecodeDataURL(testImage)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Extension)
	assert.Equal(t, []byte("not really a png"), img.Data)

	for _, bad := range []string{
		"",
		"plain text",
		"data:image/png,abc",
		"data:text/html;base64,PGI+",
		"data:image/png;base64,***",
	} {
		_, err := service.DecodeDataURL(bad)
		assert.ErrorIs(t, err, service.ErrValidation, "input %q", bad)
	}
}

func TestLocalImageStore(t *testing.T) {
	dir := t.TempDir()
	store := service.NewLocalImageStore(dir, "/media")
	ctx := context.Background()

	url, err := store.Save(ctx, "recipes", testImage)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/media/recipes/"))
	path := filepath.Join(dir, strings.TrimPrefix(url, "/media/"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("not really a png"), data)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// foreign URLs and missing files are ignored
	assert.NoError(t, store.Delete(ctx, "https://cdn.example.com/x.png"))
	assert.NoError(t, store.Delete(ctx, url))
}
