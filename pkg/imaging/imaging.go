package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	_ "image/gif"

	"github.com/nfnt/resize"
)

// JPEGQuality is used when re-encoding non-PNG uploads
const JPEGQuality = 85

// Image is a normalised upload ready for the attachment store
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Normalize decodes an uploaded image, downscales it to maxWidth keeping the
// aspect ratio and re-encodes it. PNG stays PNG so transparency survives,
// everything else becomes JPEG. A zero maxWidth disables downscaling.
func Normalize(r io.Reader, maxWidth uint) (*Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if maxWidth > 0 && uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	result := &Image{
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if format == "png" {
		err = png.Encode(&buf, img)
		result.ContentType, result.Ext = "image/png", ".png"
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
		result.ContentType, result.Ext = "image/jpeg", ".jpg"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	result.Data = buf.Bytes()

	return result, nil
}

// Rename swaps the extension of fileName for ext
func Rename(fileName, ext string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if base == "" || base == "." {
		base = "image"
	}
	return base + ext
}
