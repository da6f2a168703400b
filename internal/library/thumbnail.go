package library

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// CoverFile is the name of the thumbnail written next to a comic's
// metadata file.
const CoverFile = "cover.jpg"

const thumbnailWidth = 400

// SaveCoverThumbnail decodes the given image bytes, scales them down to
// a fixed width and writes the result as cover.jpg in dir.
func SaveCoverThumbnail(dir string, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode cover image: %w", err)
	}

	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, CoverFile), buf.Bytes(), 0644)
}
