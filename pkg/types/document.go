package types

import "time"

// SchemaVersion is the version tag written with every diary and template
// row. Rows carrying any other version are rejected on read.
const SchemaVersion = 1000

// NoTemplateName is shown for diaries without a resolvable template.
const NoTemplateName = "no template"

// Diary is a finished diary entry. A Diary with an empty DiaryID is a draft
// that has not been saved yet.
type Diary struct {
	DiaryID      string         `json:"id"`
	TemplateID   *string        `json:"templateId"`
	TemplateName *string        `json:"templateName"`
	Version      int            `json:"version"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	ColSize      int            `json:"colSize"`
	RowSize      int            `json:"rowSize"`
	Panes        []PaneInstance `json:"data"`
}

// IsDraft reports whether the diary has never been persisted.
func (d *Diary) IsDraft() bool {
	return d.DiaryID == ""
}

// TemplateLabel returns the template name snapshot, or NoTemplateName when
// the diary has no template or its template was deleted.
func (d *Diary) TemplateLabel() string {
	if d.TemplateID == nil || d.TemplateName == nil {
		return NoTemplateName
	}
	return *d.TemplateName
}

// Template is a reusable diary skeleton.
type Template struct {
	TemplateID string         `json:"id"`
	Name       string         `json:"name"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	ColSize    int            `json:"colSize"`
	RowSize    int            `json:"rowSize"`
	Panes      []PaneInstance `json:"template"`
}

// IsDraft reports whether the template has never been persisted.
func (t *Template) IsDraft() bool {
	return t.TemplateID == ""
}

// ImageMetadata describes a stored image without its payload.
type ImageMetadata struct {
	ImageID   string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	Width     *int      `json:"width"`
	Height    *int      `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
}

// Image is a stored image blob with its metadata.
type Image struct {
	ImageMetadata
	Data []byte `json:"-"`
}
