package receipts

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// PreviewSize bounds both sides of a rendered preview.
const PreviewSize = 320

// Thumbnail decodes an image, fits it into a size×size box and encodes it as JPEG.
func Thumbnail(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		size = PreviewSize
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode receipt image: %w", err)
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
