package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DirSource читает последовательность кадров frame_*.jpg из каталога,
// подготовленную внешним декодером (ffmpeg -vf fps=N). Конечный источник:
// после последнего кадра возвращает ErrEndOfStream, воркер перематывает.
type DirSource struct {
	dir    string
	files  []string
	pos    int
	fps    time.Duration
	lastAt time.Time
}

const defaultFrameInterval = time.Second / 3 // соответствует fps=3 при извлечении

func OpenDir(dir string) (*DirSource, error) {
	files, err := filepath.Glob(filepath.Join(dir, "frame_*.jpg"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frames in %s", dir)
	}
	sort.Strings(files)

	return &DirSource{
		dir:   dir,
		files: files,
		fps:   defaultFrameInterval,
	}, nil
}

func (d *DirSource) Next(ctx context.Context) (Frame, error) {
	if d.pos >= len(d.files) {
		return Frame{}, ErrEndOfStream
	}

	// держим темп воспроизведения, чтобы файловый источник вел себя как камера
	if !d.lastAt.IsZero() {
		wait := d.fps - time.Since(d.lastAt)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return Frame{}, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	data, err := os.ReadFile(d.files[d.pos])
	if err != nil {
		return Frame{}, fmt.Errorf("read frame %s: %w", d.files[d.pos], err)
	}

	frame := Frame{Data: data, Index: int64(d.pos)}
	d.pos++
	d.lastAt = time.Now()
	return frame, nil
}

func (d *DirSource) Rewind() error {
	d.pos = 0
	return nil
}

func (d *DirSource) Live() bool { return false }

func (d *DirSource) Close() error { return nil }
