package api

import (
	"encoding/json"
	"testing"

	"github.com/posprint/receipt-templates/internal/editor"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

func TestApplyEditOpColumnBatch(t *testing.T) {
	ed := editor.New(templateformat.DefaultDocument())

	ok := applyEditOp(ed, editOp{
		Op:        "add_column",
		SectionID: "items",
		Column:    &templateformat.Column{Label: "Desc.", FieldKey: "discount"},
	})
	if !ok {
		t.Fatal("expected add_column to succeed")
	}

	ok = applyEditOp(ed, editOp{
		Op:        "resize_column",
		SectionID: "items",
		LeftIndex: 0, RightIndex: 1, Delta: 5,
	})
	if !ok {
		t.Fatal("expected resize_column to succeed")
	}

	doc := ed.Snapshot()
	section := doc.FindSection("items")
	if section == nil || section.Table == nil {
		t.Fatal("expected items table section")
	}

	sum := 0
	for _, col := range section.Table.Columns {
		sum += col.WidthPercent
	}
	if sum != 100 {
		t.Errorf("expected widths to sum to 100, got %d", sum)
	}
	if got := len(section.Table.Columns); got != 5 {
		t.Errorf("expected 5 columns, got %d", got)
	}
}

func TestApplyEditOpFieldOps(t *testing.T) {
	ed := editor.New(templateformat.DefaultDocument())

	fieldJSON := json.RawMessage(`{"type":"text","id":"rnc","label":"RNC","value":"101-00000-1"}`)

	if !applyEditOp(ed, editOp{Op: "add_field", SectionID: "header", Field: fieldJSON, AtIndex: 0}) {
		t.Fatal("expected add_field to succeed")
	}
	if !applyEditOp(ed, editOp{Op: "remove_field", SectionID: "header", FieldID: "rnc"}) {
		t.Error("expected remove_field to succeed")
	}
}

func TestApplyEditOpRejectsUnknown(t *testing.T) {
	ed := editor.New(templateformat.DefaultDocument())

	if applyEditOp(ed, editOp{Op: "explode"}) {
		t.Error("expected unknown op to be rejected")
	}
	if applyEditOp(ed, editOp{Op: "add_column", SectionID: "missing"}) {
		t.Error("expected add_column without a column to be rejected")
	}
	if applyEditOp(ed, editOp{Op: "remove_field", SectionID: "header", FieldID: "ghost"}) {
		t.Error("expected remove_field on unknown field to be rejected")
	}
}
