// Package media inspects image payloads before they are stored.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// Info describes an image payload. Width and Height are nil when the
// format has no registered decoder.
type Info struct {
	MimeType string
	Size     int64
	Width    *int
	Height   *int
}

// Inspect sniffs the media type of data and reads its pixel dimensions.
func Inspect(data []byte) Info {
	info := Info{
		MimeType: mimetype.Detect(data).String(),
		Size:     int64(len(data)),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		w, h := cfg.Width, cfg.Height
		info.Width, info.Height = &w, &h
	}
	return info
}

// NewImage builds an Images row from a payload. The payload must be an
// image accepted by input, the image input of a pane field.
func NewImage(name string, data []byte, input pane.Input) (*types.Image, error) {
	info := Inspect(data)
	if !strings.HasPrefix(info.MimeType, "image/") {
		return nil, fmt.Errorf("%s is %s, not an image: %w", name, info.MimeType, types.ErrMediaRejected)
	}
	if err := input.AcceptsMedia(info.MimeType, info.Size); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &types.Image{
		ImageMetadata: types.ImageMetadata{
			Name:     name,
			MimeType: info.MimeType,
			Size:     info.Size,
			Width:    info.Width,
			Height:   info.Height,
		},
		Data: data,
	}, nil
}
