package capture

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrEndOfStream сигнализирует штатное окончание конечного источника,
// в отличие от ошибки чтения
var ErrEndOfStream = errors.New("end of stream")

// Frame один кадр источника в закодированном виде
type Frame struct {
	Data  []byte // JPEG
	Index int64
}

// Source последовательность кадров одной камеры.
// Next возвращает ErrEndOfStream на исчерпании конечного источника;
// любая другая ошибка означает сбой чтения.
type Source interface {
	Next(ctx context.Context) (Frame, error)
	// Rewind перематывает конечный источник на начало; для живых
	// источников возвращает ошибку
	Rewind() error
	// Live отличает живой поток от файлового: живой при сбое чтения
	// останавливает воркер, файловый перематывается
	Live() bool
	Close() error
}

// Open выбирает реализацию по виду источника: путь к каталогу кадров
// считается файловым источником, а URL живым MJPEG-потоком
func Open(source string) (Source, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return OpenMJPEG(source)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return OpenDir(source)
	}
	return nil, errors.New("unsupported source: " + source)
}
