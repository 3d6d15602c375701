package detect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/goccy/go-json"
)

// Detector внешний детектор/трекер кадров
type Detector interface {
	// Track отправляет кадр на детекцию с сопровождением треков;
	// track_id в ответе может отсутствовать
	Track(ctx context.Context, frame []byte, session string) ([]models.RawDetection, error)
	// Predict отправляет кадр на детекцию без трекинга, резервный путь
	// при сбое трекера
	Predict(ctx context.Context, frame []byte) ([]models.RawDetection, error)
}

type Client struct {
	URL  string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		URL:  baseURL,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Track отправляет изображение JPEG байтами на /track; session связывает
// кадры одной камеры, чтобы трекер держал идентификаторы между кадрами
func (c *Client) Track(ctx context.Context, frame []byte, session string) ([]models.RawDetection, error) {
	return c.send(ctx, frame, "/track?session="+session)
}

// Predict отправляет изображение JPEG байтами на /predict без трекинга
func (c *Client) Predict(ctx context.Context, frame []byte) ([]models.RawDetection, error) {
	return c.send(ctx, frame, "/predict")
}

func (c *Client) send(ctx context.Context, imageData []byte, path string) ([]models.RawDetection, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Создаем form field с правильным Content-Type
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", "image/jpeg")

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status: %s, error: %s", resp.Status, bodyBytes)
	}

	var detections []models.RawDetection
	if err := json.NewDecoder(resp.Body).Decode(&detections); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}

	return detections, nil
}
