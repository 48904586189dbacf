package templateformat

import (
	"testing"
)

func TestParse_ValidDocument(t *testing.T) {
	jsonData := `{
		"paperWidth": "58mm",
		"padding": 4,
		"sections": [
			{
				"id": "header",
				"name": "Header",
				"order": 1,
				"fields": [
					{"type": "text", "id": "f1", "source": "company.name", "bold": true},
					{"type": "composite", "id": "f2", "text": "Fecha: {receipt.date}"},
					{"type": "line", "id": "f3", "style": "dashed"},
					{"type": "space", "id": "f4", "height": 8}
				]
			},
			{
				"id": "items",
				"order": 2,
				"kind": "table",
				"table": {
					"columns": [
						{"label": "Desc", "fieldKey": "description", "widthPercent": 60},
						{"label": "Total", "fieldKey": "total", "widthPercent": 40, "format": "currency"}
					]
				}
			}
		]
	}`

	doc, err := Parse([]byte(jsonData))
	if err != nil {
		t.Fatalf("Expected successful parse, got error: %v", err)
	}

	if doc.PaperWidth != PaperNarrow {
		t.Errorf("Expected paper width 58mm, got %s", doc.PaperWidth)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(doc.Sections))
	}
	if len(doc.Sections[0].Fields) != 4 {
		t.Fatalf("Expected 4 fields, got %d", len(doc.Sections[0].Fields))
	}

	text, ok := doc.Sections[0].Fields[0].(TextField)
	if !ok {
		t.Fatalf("Expected TextField, got %T", doc.Sections[0].Fields[0])
	}
	if text.Source != "company.name" || !text.Bold {
		t.Errorf("TextField not decoded: %+v", text)
	}

	if _, ok := doc.Sections[0].Fields[1].(CompositeField); !ok {
		t.Errorf("Expected CompositeField, got %T", doc.Sections[0].Fields[1])
	}

	table := doc.Sections[1].Table
	if table == nil || len(table.Columns) != 2 {
		t.Fatalf("Table not decoded: %+v", table)
	}
	if table.Columns[1].Format != FormatCurrency {
		t.Errorf("Expected currency format, got %q", table.Columns[1].Format)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{invalid`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestParse_DefaultPaperWidth(t *testing.T) {
	doc, err := Parse([]byte(`{"sections": []}`))
	if err != nil {
		t.Fatalf("Expected successful parse, got error: %v", err)
	}

	if doc.PaperWidth != PaperWide {
		t.Errorf("Expected default paper width 80mm, got %s", doc.PaperWidth)
	}
}

func TestParse_VisibleDefaultsTrue(t *testing.T) {
	jsonData := `{"sections": [
		{"id": "a", "order": 1},
		{"id": "b", "order": 2, "visible": false}
	]}`

	doc, err := Parse([]byte(jsonData))
	if err != nil {
		t.Fatalf("Expected successful parse, got error: %v", err)
	}

	if !doc.Sections[0].Visible {
		t.Error("Expected missing visible key to default to true")
	}
	if doc.Sections[1].Visible {
		t.Error("Expected explicit visible=false to stick")
	}
}

func TestParse_UnknownFieldTypeSkipped(t *testing.T) {
	jsonData := `{"sections": [
		{"id": "a", "order": 1, "fields": [
			{"type": "hologram", "id": "x"},
			{"type": "text", "id": "f1", "text": "hello"}
		]}
	]}`

	doc, err := Parse([]byte(jsonData))
	if err != nil {
		t.Fatalf("Expected successful parse, got error: %v", err)
	}

	if len(doc.Sections[0].Fields) != 1 {
		t.Fatalf("Expected unknown field to be dropped, got %d fields", len(doc.Sections[0].Fields))
	}
	if doc.Sections[0].Fields[0].FieldID() != "f1" {
		t.Errorf("Wrong surviving field: %v", doc.Sections[0].Fields[0])
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	doc := DefaultDocument()

	data, err := doc.ToJSON()
	if err != nil {
		t.Fatalf("Expected successful JSON conversion, got error: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Expected successful re-parse, got error: %v", err)
	}

	if len(parsed.Sections) != len(doc.Sections) {
		t.Fatalf("Round-trip lost sections: expected %d, got %d", len(doc.Sections), len(parsed.Sections))
	}

	for i, s := range parsed.Sections {
		if len(s.Fields) != len(doc.Sections[i].Fields) {
			t.Errorf("Section %s: expected %d fields, got %d", s.ID, len(doc.Sections[i].Fields), len(s.Fields))
		}
	}

	items := parsed.FindSection("items")
	if items == nil || items.Table == nil {
		t.Fatal("Round-trip lost the items table")
	}
	if len(items.Table.Columns) != 4 {
		t.Errorf("Expected 4 default columns, got %d", len(items.Table.Columns))
	}
}

func TestColumn_IsActive(t *testing.T) {
	off := false
	on := true

	tests := []struct {
		name   string
		col    Column
		expect bool
	}{
		{"nil means active", Column{Label: "A"}, true},
		{"explicit true", Column{Label: "B", Active: &on}, true},
		{"explicit false", Column{Label: "C", Active: &off}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.col.IsActive() != tt.expect {
				t.Errorf("IsActive() = %v, want %v", tt.col.IsActive(), tt.expect)
			}
		})
	}
}

func TestPaperWidthPixels(t *testing.T) {
	tests := []struct {
		width  string
		pixels int
	}{
		{"58mm", 384},
		{"80mm", 576},
		{"", 576},
		{"112mm", 576},
	}

	for _, tt := range tests {
		if got := PaperWidthPixels(tt.width); got != tt.pixels {
			t.Errorf("PaperWidthPixels(%q) = %d, want %d", tt.width, got, tt.pixels)
		}
	}
}
