package templateformat

import "sort"

// SortedVisibleSections returns the sections that take part in a render pass:
// visible sections in ascending Order, ties broken by original sequence.
func (d *Document) SortedVisibleSections() []Section {
	visible := make([]Section, 0, len(d.Sections))
	for _, s := range d.Sections {
		if s.Visible {
			visible = append(visible, s)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Order < visible[j].Order
	})

	return visible
}

// FindSection returns a pointer to the section with the given ID, or nil.
func (d *Document) FindSection(sectionID string) *Section {
	for i := range d.Sections {
		if d.Sections[i].ID == sectionID {
			return &d.Sections[i]
		}
	}
	return nil
}

// FindField returns the field with the given ID inside a section.
func (d *Document) FindField(sectionID, fieldID string) (Field, bool) {
	s := d.FindSection(sectionID)
	if s == nil {
		return nil, false
	}

	for _, f := range s.Fields {
		if f.FieldID() == fieldID {
			return f, true
		}
	}
	return nil, false
}

// AddField inserts a field into a section at the given index. An out-of-range
// index appends. Returns false if the section does not exist or is a table
// container.
func (d *Document) AddField(sectionID string, field Field, atIndex int) bool {
	s := d.FindSection(sectionID)
	if s == nil || s.Kind == SectionKindTable {
		return false
	}

	if atIndex < 0 || atIndex > len(s.Fields) {
		atIndex = len(s.Fields)
	}

	s.Fields = append(s.Fields, nil)
	copy(s.Fields[atIndex+1:], s.Fields[atIndex:])
	s.Fields[atIndex] = field

	return true
}

// UpsertField replaces the field with the same ID in place, or appends it if
// no field with that ID exists. Field order is preserved except at the
// mutation point.
func (d *Document) UpsertField(sectionID string, field Field) bool {
	s := d.FindSection(sectionID)
	if s == nil || s.Kind == SectionKindTable {
		return false
	}

	for i, f := range s.Fields {
		if f.FieldID() == field.FieldID() {
			s.Fields[i] = field
			return true
		}
	}

	s.Fields = append(s.Fields, field)
	return true
}

// RemoveField deletes a field from a section and returns it, so that a
// cross-section move can reinsert the same field unchanged.
func (d *Document) RemoveField(sectionID, fieldID string) (Field, bool) {
	s := d.FindSection(sectionID)
	if s == nil {
		return nil, false
	}

	for i, f := range s.Fields {
		if f.FieldID() == fieldID {
			s.Fields = append(s.Fields[:i], s.Fields[i+1:]...)
			return f, true
		}
	}
	return nil, false
}

// MoveField relocates a field within or between sections as a remove+insert
// pair, preserving the field's identity and properties.
func (d *Document) MoveField(fromSectionID, toSectionID, fieldID string, atIndex int) bool {
	field, ok := d.RemoveField(fromSectionID, fieldID)
	if !ok {
		return false
	}

	if d.AddField(toSectionID, field, atIndex) {
		return true
	}

	// Destination rejected the field; put it back where it was.
	d.AddField(fromSectionID, field, -1)
	return false
}

// Clone returns a deep copy of the document, used to hand an immutable
// snapshot to a render pass while the editor keeps mutating the original.
func (d *Document) Clone() *Document {
	out := &Document{
		PaperWidth: d.PaperWidth,
		Padding:    d.Padding,
		Sections:   make([]Section, len(d.Sections)),
	}

	for i, s := range d.Sections {
		out.Sections[i] = s.clone()
	}

	return out
}

func (s Section) clone() Section {
	out := s

	if s.Fields != nil {
		out.Fields = make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			out.Fields[i] = cloneField(f)
		}
	}
	if s.Table != nil {
		t := s.Table.Clone()
		out.Table = &t
	}
	if s.ViewBinding != nil {
		b := *s.ViewBinding
		out.ViewBinding = &b
	}

	return out
}

// Clone returns a deep copy of a table specification.
func (t Table) Clone() Table {
	out := t

	if t.Columns != nil {
		out.Columns = make([]Column, len(t.Columns))
		for i, c := range t.Columns {
			out.Columns[i] = c
			if c.Active != nil {
				active := *c.Active
				out.Columns[i].Active = &active
			}
		}
	}
	if t.RowLayout != nil {
		out.RowLayout = make([]RowSpec, len(t.RowLayout))
		copy(out.RowLayout, t.RowLayout)
	}

	return out
}

func cloneField(f Field) Field {
	// All variants except TableField are plain value structs.
	if tf, ok := f.(TableField); ok {
		tf.Table = tf.Table.Clone()
		return tf
	}
	return f
}
