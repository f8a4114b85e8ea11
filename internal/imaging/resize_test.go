package imaging

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	t.Run("small image passes through byte for byte", func(t *testing.T) {
		original := encodePNG(t, 100, 80)

		out, err := Prepare(bytes.NewReader(original), 1600)
		require.NoError(t, err)
		require.Equal(t, original, out)
	})

	t.Run("oversized landscape image is scaled to the max edge", func(t *testing.T) {
		original := encodePNG(t, 400, 200)

		out, err := Prepare(bytes.NewReader(original), 100)
		require.NoError(t, err)

		scaled, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		require.Equal(t, "jpeg", format)
		require.Equal(t, 100, scaled.Bounds().Dx())
		require.Equal(t, 50, scaled.Bounds().Dy())
	})

	t.Run("oversized portrait image keeps its aspect ratio", func(t *testing.T) {
		original := encodePNG(t, 200, 400)

		out, err := Prepare(bytes.NewReader(original), 100)
		require.NoError(t, err)

		scaled, _, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		require.Equal(t, 50, scaled.Bounds().Dx())
		require.Equal(t, 100, scaled.Bounds().Dy())
	})

	t.Run("undecodable data passes through untouched", func(t *testing.T) {
		original := []byte("not an image at all")

		out, err := Prepare(bytes.NewReader(original), 100)
		require.NoError(t, err)
		require.Equal(t, original, out)
	})
}
