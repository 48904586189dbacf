package templateformat

import "testing"

func testDoc() *Document {
	return &Document{
		PaperWidth: PaperWide,
		Sections: []Section{
			{ID: "c", Order: 3, Visible: true, Fields: []Field{
				TextField{ID: "c1", Text: "third"},
			}},
			{ID: "a", Order: 1, Visible: true, Fields: []Field{
				TextField{ID: "a1", Text: "first"},
				SpaceField{ID: "a2", Height: 4},
			}},
			{ID: "hidden", Order: 2, Visible: false},
			{ID: "b", Order: 2, Visible: true},
		},
	}
}

func TestSortedVisibleSections(t *testing.T) {
	doc := testDoc()

	sections := doc.SortedVisibleSections()

	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}

	expected := []string{"a", "b", "c"}
	if len(ids) != len(expected) {
		t.Fatalf("Expected %d visible sections, got %v", len(expected), ids)
	}
	for i, id := range expected {
		if ids[i] != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, ids[i])
		}
	}
}

func TestSortedVisibleSections_StableOnTies(t *testing.T) {
	doc := &Document{Sections: []Section{
		{ID: "x", Order: 5, Visible: true},
		{ID: "y", Order: 5, Visible: true},
		{ID: "z", Order: 5, Visible: true},
	}}

	sections := doc.SortedVisibleSections()
	for i, id := range []string{"x", "y", "z"} {
		if sections[i].ID != id {
			t.Errorf("Tie order not stable: position %d is %s", i, sections[i].ID)
		}
	}
}

func TestFindField(t *testing.T) {
	doc := testDoc()

	f, ok := doc.FindField("a", "a2")
	if !ok {
		t.Fatal("Expected to find field a2")
	}
	if f.FieldID() != "a2" {
		t.Errorf("Found wrong field: %s", f.FieldID())
	}

	if _, ok := doc.FindField("a", "missing"); ok {
		t.Error("Expected miss for unknown field ID")
	}
	if _, ok := doc.FindField("missing", "a1"); ok {
		t.Error("Expected miss for unknown section ID")
	}
}

func TestAddField_AtIndex(t *testing.T) {
	doc := testDoc()

	if !doc.AddField("a", LineField{ID: "a-new", Style: LineSolid}, 1) {
		t.Fatal("AddField failed")
	}

	s := doc.FindSection("a")
	ids := []string{"a1", "a-new", "a2"}
	for i, id := range ids {
		if s.Fields[i].FieldID() != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, s.Fields[i].FieldID())
		}
	}
}

func TestAddField_OutOfRangeAppends(t *testing.T) {
	doc := testDoc()

	doc.AddField("a", SpaceField{ID: "tail"}, 99)

	s := doc.FindSection("a")
	if s.Fields[len(s.Fields)-1].FieldID() != "tail" {
		t.Error("Expected out-of-range index to append")
	}
}

func TestUpsertField_ReplacesInPlace(t *testing.T) {
	doc := testDoc()

	doc.UpsertField("a", TextField{ID: "a1", Text: "replaced"})

	s := doc.FindSection("a")
	if len(s.Fields) != 2 {
		t.Fatalf("Expected 2 fields after upsert, got %d", len(s.Fields))
	}
	if s.Fields[0].(TextField).Text != "replaced" {
		t.Error("Upsert did not replace in place")
	}
}

func TestRemoveField(t *testing.T) {
	doc := testDoc()

	removed, ok := doc.RemoveField("a", "a1")
	if !ok {
		t.Fatal("RemoveField failed")
	}
	if removed.FieldID() != "a1" {
		t.Errorf("Removed wrong field: %s", removed.FieldID())
	}

	s := doc.FindSection("a")
	if len(s.Fields) != 1 || s.Fields[0].FieldID() != "a2" {
		t.Errorf("Unexpected fields after remove: %v", s.Fields)
	}
}

func TestMoveField_CrossSectionPreservesField(t *testing.T) {
	doc := testDoc()

	original, _ := doc.FindField("a", "a1")

	if !doc.MoveField("a", "b", "a1", 0) {
		t.Fatal("MoveField failed")
	}

	if _, ok := doc.FindField("a", "a1"); ok {
		t.Error("Field still present in source section")
	}

	moved, ok := doc.FindField("b", "a1")
	if !ok {
		t.Fatal("Field not present in destination section")
	}
	if moved.(TextField) != original.(TextField) {
		t.Errorf("Move changed the field: %+v vs %+v", moved, original)
	}
}

func TestMoveField_RejectedDestinationRestores(t *testing.T) {
	doc := testDoc()
	doc.Sections = append(doc.Sections, Section{ID: "tbl", Order: 9, Visible: true, Kind: SectionKindTable})

	if doc.MoveField("a", "tbl", "a1", 0) {
		t.Error("Expected move into table section to fail")
	}

	if _, ok := doc.FindField("a", "a1"); !ok {
		t.Error("Field lost after failed move")
	}
}

func TestClone_Independent(t *testing.T) {
	doc := DefaultDocument()
	snapshot := doc.Clone()

	doc.RemoveField("header", "company-name")
	doc.FindSection("items").Table.Columns[0].Label = "changed"

	if _, ok := snapshot.FindField("header", "company-name"); !ok {
		t.Error("Snapshot affected by removal on the original")
	}
	if snapshot.FindSection("items").Table.Columns[0].Label != "Desc" {
		t.Error("Snapshot affected by column mutation on the original")
	}
}
