package assemble

import (
	"github.com/posprint/receipt-templates/internal/resolve"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// TableEngine lays out itemized tables into header and row-group fragments.
type TableEngine struct {
	formatter *resolve.Formatter
}

// NewTableEngine creates a table layout engine using the given formatter.
func NewTableEngine(formatter *resolve.Formatter) *TableEngine {
	return &TableEngine{formatter: formatter}
}

// RenderedTable is the ordered output of one table layout: an optional header
// followed by one row-group per item, each group's fragments in row-layout
// declaration order.
type RenderedTable struct {
	Header    *Fragment
	RowGroups [][]Fragment
}

// Fragments flattens the rendered table into the document fragment stream.
func (t RenderedTable) Fragments() []Fragment {
	var out []Fragment
	if t.Header != nil {
		out = append(out, *t.Header)
	}
	for _, group := range t.RowGroups {
		out = append(out, group...)
	}
	return out
}

// Layout produces the rendered table for a table specification and an items
// collection. Malformed specifications fall back to built-in defaults; items
// missing a referenced field degrade to empty cells.
func (e *TableEngine) Layout(sectionID string, table templateformat.Table, items []map[string]interface{}) RenderedTable {
	columns := activeColumns(table)
	rowLayout := table.RowLayout
	if len(rowLayout) == 0 {
		rowLayout = []templateformat.RowSpec{{Kind: templateformat.RowColumns}}
	}

	var rendered RenderedTable

	if hasColumnsRow(rowLayout) {
		rendered.Header = e.headerFragment(sectionID, table, columns)
	}

	for _, item := range items {
		group := make([]Fragment, 0, len(rowLayout))
		for _, spec := range rowLayout {
			switch spec.Kind {
			case templateformat.RowColumns:
				group = append(group, e.columnsRow(sectionID, columns, item))
			case templateformat.RowText:
				group = append(group, Fragment{
					Kind:      FragmentText,
					SectionID: sectionID,
					Text:      resolve.Compose(item, spec.Template),
					Alignment: spec.Alignment,
					FontSize:  spec.FontSize,
				})
			case templateformat.RowSeparator:
				style := spec.Style
				if style == "" {
					style = templateformat.LineSolid
				}
				group = append(group, Fragment{
					Kind:      FragmentLine,
					SectionID: sectionID,
					Style:     style,
				})
			}
		}
		rendered.RowGroups = append(rendered.RowGroups, group)
	}

	return rendered
}

// activeColumns returns the columns that participate in rendering, falling
// back to the built-in default set when the table defines none at all.
func activeColumns(table templateformat.Table) []templateformat.Column {
	source := table.Columns
	if len(source) == 0 {
		source = templateformat.DefaultTable().Columns
	}

	active := make([]templateformat.Column, 0, len(source))
	for _, c := range source {
		if c.IsActive() {
			active = append(active, c)
		}
	}
	return active
}

func hasColumnsRow(rowLayout []templateformat.RowSpec) bool {
	for _, spec := range rowLayout {
		if spec.Kind == templateformat.RowColumns {
			return true
		}
	}
	return false
}

func (e *TableEngine) headerFragment(sectionID string, table templateformat.Table, columns []templateformat.Column) *Fragment {
	cells := make([]Cell, len(columns))
	for i, col := range columns {
		cells[i] = Cell{
			Text:         col.Label,
			WidthPercent: col.WidthPercent,
			Alignment:    col.Alignment,
			FontSize:     col.FontSize,
			Bold:         true,
			ResizeHandle: table.ResizeMode && i < len(columns)-1,
		}
	}

	style := table.HeaderBorder
	if style == "" {
		style = templateformat.HeaderBorderNone
	}

	return &Fragment{
		Kind:      FragmentTableHeader,
		SectionID: sectionID,
		Style:     style,
		Cells:     cells,
	}
}

func (e *TableEngine) columnsRow(sectionID string, columns []templateformat.Column, item map[string]interface{}) Fragment {
	cells := make([]Cell, len(columns))
	for i, col := range columns {
		value := itemValue(item, col.FieldKey)

		var text string
		if col.Format != templateformat.FormatNone && value != nil {
			text = e.formatter.Format(value, col.Format)
		} else {
			text = resolve.Stringify(value)
		}

		cells[i] = Cell{
			Text:         text,
			WidthPercent: col.WidthPercent,
			Alignment:    col.Alignment,
			FontSize:     col.FontSize,
			Bold:         col.Bold,
		}
	}

	return Fragment{
		Kind:      FragmentTableRow,
		SectionID: sectionID,
		Cells:     cells,
	}
}

// itemValue reads a column's field from an item, with the legacy qty/quantity
// aliasing: templates written against either key resolve the sibling.
func itemValue(item map[string]interface{}, key string) interface{} {
	if v, ok := item[key]; ok && v != nil {
		return v
	}

	switch key {
	case "qty":
		return item["quantity"]
	case "quantity":
		return item["qty"]
	}
	return nil
}
