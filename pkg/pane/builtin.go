package pane

import (
	"fmt"
	"strings"

	"github.com/fundiary/fundiary/pkg/types"
)

// Built-in pane type identifiers.
const (
	TextPaneID  = "base:text"
	ImagePaneID = "base:image"
)

// Renderer is the Component shape of the built-in types: it renders pane
// data as a one-line plain text summary.
type Renderer func(data map[string]any) string

// Fields of base:text.
var (
	TextContent = TextField("text", "Text",
		Describe("Anything from the day's entry to a title."),
		Placeholder("What happened today..."),
		Param())
	TextFontSize = NumberField("fontSize", "Font size",
		Describe("Font size of the text in pixels."),
		Range(8, 72), Step(1), Unit("px"))
	TextColor = ColorField("color", "Text colour",
		Describe("Colour of the text."))
)

// Fields of base:image.
var (
	ImageRef = ImageField("imageId", "Image",
		Describe("The image to display."),
		Accept("image/*"), MaxSize(10<<20), Param())
	ImageObjectFit = SelectField("objectFit", "Fit", []Option{
		{Value: "cover", Label: "Cover (crop)"},
		{Value: "contain", Label: "Contain"},
		{Value: "fill", Label: "Stretch"},
		{Value: "none", Label: "Original size"},
	}, Describe("How the image fills the pane."), Placeholder("Choose a fit"))
	ImageBorderRadius = NumberField("borderRadius", "Corner radius",
		Describe("Rounds the image corners, in pixels."),
		Range(0, 100), Unit("px"))
)

// TextPane returns the descriptor of base:text.
func TextPane() Descriptor {
	return Descriptor{
		Identifier: TextPaneID,
		Name:       "Text",
		Size:       types.Size{Width: 1, Height: 1},
		Schema: Schema{
			"text":     {Type: TypeString},
			"fontSize": {Type: TypeNumber, Min: Float(8), Max: Float(72)},
			"color":    {Type: TypeInteger, Min: Float(0), Max: Float(MaxColor)},
		},
		InitData: func() map[string]any {
			return map[string]any{"text": "", "fontSize": 16, "color": MaxColor}
		},
		Fields:    []FieldDescriptor{TextContent.Erase(), TextFontSize.Erase(), TextColor.Erase()},
		Resize:    &ResizePolicy{},
		Component: Renderer(renderText),
	}
}

// ImagePane returns the descriptor of base:image.
func ImagePane() Descriptor {
	return Descriptor{
		Identifier: ImagePaneID,
		Name:       "Image",
		Size:       types.Size{Width: 1, Height: 1},
		Schema: Schema{
			"imageId":      {Type: TypeString},
			"objectFit":    {Type: TypeString, Enum: []string{"cover", "contain", "fill", "none"}},
			"borderRadius": {Type: TypeNumber, Min: Float(0), Max: Float(100)},
		},
		InitData: func() map[string]any {
			return map[string]any{"imageId": "", "objectFit": "cover", "borderRadius": 0}
		},
		Fields:    []FieldDescriptor{ImageRef.Erase(), ImageObjectFit.Erase(), ImageBorderRadius.Erase()},
		Resize:    &ResizePolicy{},
		Component: Renderer(renderImage),
	}
}

// Builtins returns the descriptors of every built-in pane type.
func Builtins() []Descriptor {
	return []Descriptor{TextPane(), ImagePane()}
}

func renderText(data map[string]any) string {
	text, _ := data["text"].(string)
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "(empty)"
	}
	return text
}

func renderImage(data map[string]any) string {
	id, _ := data["imageId"].(string)
	if id == "" {
		return "(no image)"
	}
	fit, _ := data["objectFit"].(string)
	return fmt.Sprintf("image %s (%s)", id, fit)
}
