// Package imaging downscales oversized food photos before they are forwarded
// to the analysis endpoint, so a modern phone camera shot does not push tens
// of megabytes through the upstream API.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

// Prepare returns the image bytes to forward upstream. Images whose longest
// edge fits within maxEdge pass through untouched (original bytes, original
// format); larger ones are scaled down proportionally and re-encoded as JPEG.
// Unrecognized data also passes through untouched: the analysis endpoint owns
// the final verdict on what it accepts.
func Prepare(r io.Reader, maxEdge int) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw, nil
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxEdge && height <= maxEdge {
		return raw, nil
	}

	scaled := scale(src, bounds, maxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return raw, nil
	}

	return buf.Bytes(), nil
}

func scale(src image.Image, bounds image.Rectangle, maxEdge int) image.Image {
	width, height := bounds.Dx(), bounds.Dy()

	var dstW, dstH int
	if width >= height {
		dstW = maxEdge
		dstH = height * maxEdge / width
	} else {
		dstH = maxEdge
		dstW = width * maxEdge / height
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
