package worker

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
)

// thumbnail вырезает bbox из JPEG-кадра, ужимает до side×side и кодирует
// в base64. Любой сбой здесь не фатален для события appear.
func thumbnail(frame []byte, bbox [4]int, side int) (string, string, error) {
	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", "", fmt.Errorf("decode frame: %w", err)
	}

	crop := image.Rect(bbox[0], bbox[1], bbox[2], bbox[3]).Intersect(img.Bounds())
	if crop.Empty() {
		return "", "", fmt.Errorf("bbox %v outside frame %v", bbox, img.Bounds())
	}

	if side <= 0 {
		side = 128
	}
	scaled := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		srcY := crop.Min.Y + y*crop.Dy()/side
		for x := 0; x < side; x++ {
			srcX := crop.Min.X + x*crop.Dx()/side
			scaled.Set(x, y, img.At(srcX, srcY))
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 70}); err != nil {
		return "", "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), "image/jpeg", nil
}
