package transcode

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
)

// RasterCodec decodes bitmaps and re-encodes them in a lossy format.
type RasterCodec interface {
	Decode(data []byte) (image.Image, error)
	Encode(img image.Image, quality float64) ([]byte, error)
	// Ext is the canonical extension of the encoded format.
	Ext() string
}

// WebPCodec decodes png/jpeg with the standard library decoders and encodes
// lossy WebP through libwebp.
type WebPCodec struct{}

func (WebPCodec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode bitmap: %w", err)
	}
	return img, nil
}

// Encode writes img as lossy WebP. quality is a factor in (0, 1].
func (WebPCodec) Encode(img image.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality * 100)}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func (WebPCodec) Ext() string { return "webp" }
