package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
)

// MJPEGSource живой источник: HTTP-поток multipart/x-mixed-replace с JPEG
// частями, как отдают IP-камеры. Сбой чтения для живого источника фатален
// для его воркера.
type MJPEGSource struct {
	url    string
	resp   *http.Response
	reader *multipart.Reader
	index  int64
}

func OpenMJPEG(url string) (*MJPEGSource, error) {
	s := &MJPEGSource{url: url}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MJPEGSource) connect() error {
	resp, err := http.Get(s.url)
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("connect %s: bad status %s", s.url, resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/x-mixed-replace" || params["boundary"] == "" {
		resp.Body.Close()
		return fmt.Errorf("connect %s: not an MJPEG stream (%s)", s.url, resp.Header.Get("Content-Type"))
	}

	s.resp = resp
	s.reader = multipart.NewReader(resp.Body, params["boundary"])
	return nil
}

func (s *MJPEGSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	part, err := s.reader.NextPart()
	if err != nil {
		if errors.Is(err, io.EOF) {
			// живой поток закрылся на стороне камеры
			return Frame{}, fmt.Errorf("stream %s closed: %w", s.url, err)
		}
		return Frame{}, fmt.Errorf("read part: %w", err)
	}

	data, err := io.ReadAll(part)
	part.Close()
	if err != nil {
		return Frame{}, fmt.Errorf("read frame body: %w", err)
	}

	frame := Frame{Data: data, Index: s.index}
	s.index++
	return frame, nil
}

func (s *MJPEGSource) Rewind() error {
	return errors.New("live source cannot rewind")
}

func (s *MJPEGSource) Live() bool { return true }

func (s *MJPEGSource) Close() error {
	if s.resp != nil {
		return s.resp.Body.Close()
	}
	return nil
}
