// Package assemble turns a template document plus a render context into the
// ordered fragment stream consumed by drawing layers. The walk is best-effort
// throughout: a field, table cell, or binding that cannot resolve degrades to
// empty content and never aborts the document.
package assemble

// FragmentKind discriminates rendered fragments
type FragmentKind string

const (
	FragmentText        FragmentKind = "text"
	FragmentImage       FragmentKind = "image"
	FragmentLine        FragmentKind = "line"
	FragmentSpace       FragmentKind = "space"
	FragmentTableHeader FragmentKind = "table_header"
	FragmentTableRow    FragmentKind = "table_row"
)

// Fragment is one typed, ordered unit of rendered output.
type Fragment struct {
	Kind      FragmentKind `json:"kind"`
	SectionID string       `json:"sectionId,omitempty"`
	FieldID   string       `json:"fieldId,omitempty"`

	// Text and table-free content
	Text      string `json:"text,omitempty"`
	Label     string `json:"label,omitempty"`
	Alignment string `json:"alignment,omitempty"`
	FontSize  int    `json:"fontSize,omitempty"`
	Bold      bool   `json:"bold,omitempty"`

	MarginTop    int `json:"marginTop,omitempty"`
	MarginBottom int `json:"marginBottom,omitempty"`

	// Lines and separators
	Style string `json:"style,omitempty"`

	// Space and image
	Height int    `json:"height,omitempty"`
	Source string `json:"source,omitempty"`

	// Table header and row cells
	Cells []Cell `json:"cells,omitempty"`
}

// Cell is one table cell inside a header or columns-row fragment.
type Cell struct {
	Text         string `json:"text"`
	WidthPercent int    `json:"widthPercent"`
	Alignment    string `json:"alignment,omitempty"`
	FontSize     int    `json:"fontSize,omitempty"`
	Bold         bool   `json:"bold,omitempty"`

	// ResizeHandle marks that the editor draws a drag handle after this cell.
	// Set on all but the last header cell when the table is in resize mode.
	ResizeHandle bool `json:"resizeHandle,omitempty"`
}
