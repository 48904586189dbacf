package templateformat

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse parses a template document from a byte slice
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	if doc.PaperWidth == "" {
		doc.PaperWidth = PaperWide
	}
	if doc.Padding < 0 {
		doc.Padding = 0
	}

	return &doc, nil
}

// ParseFile parses a template document from disk
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	return Parse(data)
}

// ToJSON converts a Document to JSON bytes
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// SaveToFile saves a Document to a file
func (d *Document) SaveToFile(path string) error {
	data, err := d.ToJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultTable returns the built-in 4-column item table used when a table has
// no columns of its own and by the editor's reset operation.
func DefaultTable() Table {
	return Table{
		Columns: []Column{
			{Label: "Desc", FieldKey: "description", WidthPercent: 40, Alignment: "left"},
			{Label: "Cant", FieldKey: "quantity", WidthPercent: 20, Alignment: "right"},
			{Label: "Precio", FieldKey: "price", WidthPercent: 20, Alignment: "right", Format: FormatCurrency},
			{Label: "Total", FieldKey: "total", WidthPercent: 20, Alignment: "right", Format: FormatCurrency},
		},
		RowLayout:    []RowSpec{{Kind: RowColumns}},
		HeaderBorder: HeaderBorderDashed,
	}
}

// DefaultDocument returns the hard-coded fallback template used when the
// store has no default for a receipt kind.
func DefaultDocument() *Document {
	return &Document{
		PaperWidth: PaperWide,
		Padding:    8,
		Sections: []Section{
			{
				ID:      "header",
				Name:    "Encabezado",
				Order:   1,
				Visible: true,
				Fields: []Field{
					TextField{ID: "company-name", Source: "company.name", Alignment: "center", FontSize: 26, Bold: true},
					TextField{ID: "company-rnc", Source: "company.rnc", Label: "RNC", Alignment: "center"},
					TextField{ID: "company-phone", Source: "company.phone", Alignment: "center"},
					LineField{ID: "header-rule", Style: LineDashed},
				},
			},
			{
				ID:      "meta",
				Name:    "Datos",
				Order:   2,
				Visible: true,
				Fields: []Field{
					TextField{ID: "receipt-number", Source: "receipt.number", Label: "Factura"},
					TextField{ID: "receipt-date", Source: "receipt.date", Label: "Fecha", Format: FormatDate},
					CompositeField{ID: "customer-line", Text: "Cliente: {receipt.customerName}"},
					SpaceField{ID: "meta-space", Height: 6},
				},
			},
			{
				ID:      "items",
				Name:    "Articulos",
				Order:   3,
				Visible: true,
				Kind:    SectionKindTable,
				Table:   tablePtr(DefaultTable()),
			},
			{
				ID:      "totals",
				Name:    "Totales",
				Order:   4,
				Visible: true,
				Fields: []Field{
					LineField{ID: "totals-rule", Style: LineSolid},
					TextField{ID: "subtotal", Source: "receipt.subtotal", Label: "Subtotal", Format: FormatCurrency, Alignment: "right"},
					TextField{ID: "tax", Source: "receipt.tax", Label: "ITBIS", Format: FormatCurrency, Alignment: "right"},
					TextField{ID: "total", Source: "receipt.total", Label: "Total", Format: FormatCurrency, Alignment: "right", Bold: true, FontSize: 24},
				},
			},
			{
				ID:      "footer",
				Name:    "Pie",
				Order:   5,
				Visible: true,
				Fields: []Field{
					SpaceField{ID: "footer-space", Height: 10},
					TextField{ID: "footer-message", Text: "Gracias por su compra", Alignment: "center"},
				},
			},
		},
	}
}

func tablePtr(t Table) *Table {
	return &t
}
