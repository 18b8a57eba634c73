// Package imaging decodes downloaded illustrations and re-encodes them as
// lossless PNG for the offline asset cache.
package imaging

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/dtnitsch/whatif/models"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var errEmpty = errors.New("empty image data")

// ToPNG decodes data in any registered format and encodes it as PNG.
// source identifies the image in errors.
func ToPNG(source string, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &models.DecodeError{Source: source, Err: errEmpty}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &models.DecodeError{Source: source, Err: err}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, &models.DecodeError{Source: source, Err: err}
	}
	return buf.Bytes(), nil
}
