// Package templateformat defines the types for the receipt template document format
package templateformat

// Paper width classes supported by the document format
const (
	PaperNarrow = "58mm"
	PaperWide   = "80mm"
)

// FormatKind names a value formatting rule applied at render time
type FormatKind string

const (
	FormatNone     FormatKind = ""
	FormatCurrency FormatKind = "currency"
	FormatDate     FormatKind = "date"
	FormatTime     FormatKind = "time"
)

// Section kinds
const (
	SectionKindFields = ""      // plain ordered field container
	SectionKindTable  = "table" // single embedded table specification
)

// Line styles
const (
	LineSolid  = "solid"
	LineDashed = "dashed"
	LineDouble = "double"
)

// Document represents the root of a receipt template
type Document struct {
	PaperWidth string    `json:"paperWidth,omitempty"` // "58mm" or "80mm"
	Padding    int       `json:"padding,omitempty"`
	Sections   []Section `json:"sections"`
}

// Section is a named, ordered, independently toggleable region of the template.
// A section is either a plain field container or a table container, never both.
type Section struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Order       int          `json:"order"`
	Visible     bool         `json:"visible"`
	Kind        string       `json:"kind,omitempty"`
	Fields      []Field      `json:"fields,omitempty"`
	Table       *Table       `json:"table,omitempty"`
	ViewBinding *ViewBinding `json:"viewBinding,omitempty"`
}

// ViewBinding pulls one external row from a named data view, filtered by a
// value resolved from the render context, into the ext namespace.
type ViewBinding struct {
	ViewName     string `json:"viewName"`
	MappingField string `json:"mappingField"`
}

// Field is one atomic renderable unit within a section. It is a closed union;
// renderers dispatch on the concrete variant with a type switch.
type Field interface {
	// FieldID returns the stable identity used by the editor to target the field.
	FieldID() string

	isField()
}

// TextField renders a single resolved or literal value with an optional label.
// Exactly one of Source/Text is meaningful.
type TextField struct {
	ID           string     `json:"id,omitempty"`
	Source       string     `json:"source,omitempty"` // dotted path into the context
	Text         string     `json:"text,omitempty"`   // literal value
	Label        string     `json:"label,omitempty"`
	Format       FormatKind `json:"format,omitempty"`
	Alignment    string     `json:"alignment,omitempty"`
	FontSize     int        `json:"fontSize,omitempty"`
	Bold         bool       `json:"bold,omitempty"`
	MarginTop    int        `json:"marginTop,omitempty"`
	MarginBottom int        `json:"marginBottom,omitempty"`
}

// CompositeField renders literal text containing {dotted.path} placeholders.
type CompositeField struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Alignment string `json:"alignment,omitempty"`
	FontSize  int    `json:"fontSize,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
}

// ImageField renders an image addressed by a context path.
type ImageField struct {
	ID        string `json:"id,omitempty"`
	Source    string `json:"source"`
	Height    int    `json:"height,omitempty"`
	Alignment string `json:"alignment,omitempty"`
}

// LineField renders a horizontal rule.
type LineField struct {
	ID    string `json:"id,omitempty"`
	Style string `json:"style,omitempty"` // solid, dashed, double
}

// SpaceField renders vertical whitespace.
type SpaceField struct {
	ID     string `json:"id,omitempty"`
	Height int    `json:"height,omitempty"`
}

// TableField embeds a table specification as a field inside a plain section.
type TableField struct {
	ID    string `json:"id,omitempty"`
	Table Table  `json:"table"`
}

func (f TextField) FieldID() string      { return f.ID }
func (f CompositeField) FieldID() string { return f.ID }
func (f ImageField) FieldID() string     { return f.ID }
func (f LineField) FieldID() string      { return f.ID }
func (f SpaceField) FieldID() string     { return f.ID }
func (f TableField) FieldID() string     { return f.ID }

func (TextField) isField()      {}
func (CompositeField) isField() {}
func (ImageField) isField()     {}
func (LineField) isField()      {}
func (SpaceField) isField()     {}
func (TableField) isField()     {}

// Header border styles for tables
const (
	HeaderBorderNone   = "none"
	HeaderBorderDashed = "dashed"
	HeaderBorderSolid  = "solid"
)

// Table describes an itemized table: a column set plus a per-item row layout.
type Table struct {
	Columns      []Column  `json:"columns,omitempty"`
	RowLayout    []RowSpec `json:"rowLayout,omitempty"`
	HeaderBorder string    `json:"headerBorder,omitempty"`
	ResizeMode   bool      `json:"resizeMode,omitempty"`
}

// Column is one table column. A nil Active means active; the sum of
// WidthPercent over active columns should be 100, but violations only degrade
// alignment and never fail rendering.
type Column struct {
	Label        string     `json:"label"`
	FieldKey     string     `json:"fieldKey"`
	WidthPercent int        `json:"widthPercent"`
	Alignment    string     `json:"alignment,omitempty"`
	FontSize     int        `json:"fontSize,omitempty"`
	Bold         bool       `json:"bold,omitempty"`
	Format       FormatKind `json:"format,omitempty"`
	Active       *bool      `json:"active,omitempty"`
}

// IsActive reports whether the column participates in rendering (active != false).
func (c Column) IsActive() bool {
	return c.Active == nil || *c.Active
}

// RowSpec kinds
const (
	RowColumns   = "columns"
	RowText      = "text"
	RowSeparator = "separator"
)

// RowSpec is one line template inside a table's row layout, applied once per item.
type RowSpec struct {
	Kind      string `json:"kind"`
	Template  string `json:"template,omitempty"` // text rows: {key} placeholders against the item
	Alignment string `json:"alignment,omitempty"`
	FontSize  int    `json:"fontSize,omitempty"`
	Style     string `json:"style,omitempty"` // separator rows
}

// PaperWidthPixels maps a paper width class to the pixel width consumed by
// downstream drawing layers.
func PaperWidthPixels(width string) int {
	switch width {
	case PaperNarrow:
		return 384
	case PaperWide:
		return 576
	default:
		return 576 // default to 80mm
	}
}
