// Package images loads local image assets for the dashboard: full files as
// data URIs and downscaled PNG thumbnails for the grid view.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	_ "image/gif"
	_ "image/jpeg"
)

// ErrNotImage marks a file whose content is not a decodable image.
var ErrNotImage = fmt.Errorf("file is not an image")

// LoadDataURI reads a file and returns it as a base64 data URI, sniffing
// the MIME type from content rather than trusting the extension.
func LoadDataURI(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mtype := mimetype.Detect(raw)
	encoded := base64.StdEncoding.EncodeToString(raw)
	return fmt.Sprintf("data:%s;base64,%s", mtype.String(), encoded), nil
}

// LoadThumbnail decodes an image file, scales it down so its longest edge
// is at most maxEdge pixels, and re-encodes as PNG. Images already within
// bounds are re-encoded without scaling.
func LoadThumbnail(path string, maxEdge int) ([]byte, error) {
	if maxEdge <= 0 {
		maxEdge = 128
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	mtype := mimetype.Detect(raw)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%s: %w", mtype.String(), ErrNotImage)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := scaleDown(src, maxEdge)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleDown resizes with nearest-neighbor sampling, which is plenty for
// grid-cell thumbnails.
func scaleDown(src image.Image, maxEdge int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	outW, outH := maxEdge, maxEdge
	if w > h {
		outH = h * maxEdge / w
	} else {
		outW = w * maxEdge / h
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		srcY := bounds.Min.Y + y*h/outH
		for x := 0; x < outW; x++ {
			srcX := bounds.Min.X + x*w/outW
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
