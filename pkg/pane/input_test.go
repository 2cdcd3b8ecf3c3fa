package pane

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fundiary/fundiary/pkg/types"
)

func TestAcceptsMedia(t *testing.T) {
	image := ImageRef.Erase().Input

	tests := []struct {
		name  string
		input Input
		mime  string
		size  int64
		ok    bool
	}{
		{"png", image, "image/png", 1024, true},
		{"jpeg with params", image, "image/jpeg; charset=binary", 1024, true},
		{"upper case", image, "IMAGE/GIF", 1, true},
		{"at limit", image, "image/png", 10 << 20, true},
		{"over limit", image, "image/png", 10<<20 + 1, false},
		{"wrong type", image, "application/pdf", 10, false},
		{"not an image input", TextContent.Erase().Input, "image/png", 10, false},
		{"no accept list", Input{Kind: KindImage}, "application/pdf", 10, true},
		{"exact pattern", Input{Kind: KindImage, Accept: []string{"image/webp"}}, "image/png", 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.AcceptsMedia(tt.mime, tt.size)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, types.ErrMediaRejected)
			}
		})
	}
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "base:text", ID("base", "text"))
	assert.True(t, ValidIdentifier("my-plugin:check_list"))
	for _, bad := range []string{"", "text", ":text", "base:", "a:b:c", "base:te xt"} {
		assert.False(t, ValidIdentifier(bad), bad)
	}

	ns, name, ok := SplitIdentifier("base:image")
	assert.True(t, ok)
	assert.Equal(t, "base", ns)
	assert.Equal(t, "image", name)

	_, _, ok = SplitIdentifier("bad")
	assert.False(t, ok)
}
