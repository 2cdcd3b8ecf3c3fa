package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspectPNG(t *testing.T) {
	data := pngBytes(t, 4, 3)
	info := Inspect(data)

	assert.Equal(t, "image/png", info.MimeType)
	assert.Equal(t, int64(len(data)), info.Size)
	require.NotNil(t, info.Width)
	require.NotNil(t, info.Height)
	assert.Equal(t, 4, *info.Width)
	assert.Equal(t, 3, *info.Height)
}

func TestInspectText(t *testing.T) {
	info := Inspect([]byte("just some text"))
	assert.Equal(t, "text/plain; charset=utf-8", info.MimeType)
	assert.Nil(t, info.Width)
	assert.Nil(t, info.Height)
}

func TestNewImage(t *testing.T) {
	input := pane.ImageRef.Erase().Input
	data := pngBytes(t, 2, 2)

	img, err := NewImage("dot.png", data, input)
	require.NoError(t, err)
	assert.Empty(t, img.ImageID)
	assert.Equal(t, "dot.png", img.Name)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, int64(len(data)), img.Size)
	assert.Equal(t, data, img.Data)
	require.NotNil(t, img.Width)
	assert.Equal(t, 2, *img.Width)
}

func TestNewImageRejects(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		input pane.Input
	}{
		{"not an image", []byte("hello"), pane.ImageRef.Erase().Input},
		{"too large", pngBytes(t, 2, 2), pane.Input{Kind: pane.KindImage, MaxSizeBytes: func() *int64 { n := int64(8); return &n }()}},
		{"type not accepted", pngBytes(t, 2, 2), pane.Input{Kind: pane.KindImage, Accept: []string{"image/jpeg"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImage("f", tt.data, tt.input)
			assert.ErrorIs(t, err, types.ErrMediaRejected)
		})
	}
}
