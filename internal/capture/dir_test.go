package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameDir(t *testing.T, frames ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range frames {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	return dir
}

func TestDirSourceReadsSortedFrames(t *testing.T) {
	// имена вразнобой: порядок задаёт сортировка
	dir := frameDir(t, "frame_0002.jpg", "frame_0000.jpg", "frame_0001.jpg")

	src, err := OpenDir(dir)
	require.NoError(t, err)
	defer src.Close()

	assert.False(t, src.Live())

	ctx := context.Background()
	for i, want := range []string{"frame_0000.jpg", "frame_0001.jpg", "frame_0002.jpg"} {
		frame, err := src.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i), frame.Index)
		assert.Equal(t, want, string(frame.Data))
	}

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestDirSourceRewind(t *testing.T) {
	dir := frameDir(t, "frame_0000.jpg")

	src, err := OpenDir(dir)
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	_, err = src.Next(ctx)
	require.NoError(t, err)
	_, err = src.Next(ctx)
	require.ErrorIs(t, err, ErrEndOfStream)

	require.NoError(t, src.Rewind())
	frame, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), frame.Index)
}

func TestDirSourceIgnoresForeignFiles(t *testing.T) {
	dir := frameDir(t, "frame_0000.jpg", "notes.txt", "preview.png")

	src, err := OpenDir(dir)
	require.NoError(t, err)
	defer src.Close()

	assert.Len(t, src.files, 1)
}

func TestOpenDirEmpty(t *testing.T) {
	_, err := OpenDir(t.TempDir())
	assert.Error(t, err)
}

func TestDirSourceNextHonorsContext(t *testing.T) {
	dir := frameDir(t, "frame_0000.jpg", "frame_0001.jpg")

	src, err := OpenDir(dir)
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err = src.Next(ctx)
	require.NoError(t, err)

	// второй кадр ждёт темпа воспроизведения; отмена прерывает ожидание
	cancel()
	_, err = src.Next(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpenDispatch(t *testing.T) {
	dir := frameDir(t, "frame_0000.jpg")

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()
	assert.False(t, src.Live())

	_, err = Open(filepath.Join(dir, "frame_0000.jpg"))
	assert.Error(t, err, "a plain file is not a valid source")

	_, err = Open(filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
}
