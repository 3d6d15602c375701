package worker

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

const overlayThickness = 2

var overlayColor = color.RGBA{G: 200, A: 255}

// annotate рисует рамки принятых детекций на кадре и кодирует его обратно
// в JPEG. Отброшенные детекции сюда не попадают: на потоке их не видно.
func annotate(frame []byte, boxes [][4]int) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

	for _, b := range boxes {
		drawRect(canvas, b)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// drawRect рисует прямоугольную рамку, обрезая её по границам кадра
func drawRect(img *image.RGBA, b [4]int) {
	rect := image.Rect(b[0], b[1], b[2], b[3]).Intersect(img.Bounds())
	if rect.Empty() {
		return
	}

	for t := 0; t < overlayThickness; t++ {
		top, bottom := rect.Min.Y+t, rect.Max.Y-1-t
		left, right := rect.Min.X+t, rect.Max.X-1-t
		if top > bottom || left > right {
			break
		}

		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetRGBA(x, top, overlayColor)
			img.SetRGBA(x, bottom, overlayColor)
		}
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			img.SetRGBA(left, y, overlayColor)
			img.SetRGBA(right, y, overlayColor)
		}
	}
}
