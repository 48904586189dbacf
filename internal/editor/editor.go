// Package editor is the single-writer mutation surface over a template
// document: field add/move/remove plus the table column operations that keep
// the 100% width-sum invariant. Render passes work on snapshots; the editor
// is the only code that mutates the authoring copy.
package editor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// MinColumnWidth is the floor below which a resize is rejected.
const MinColumnWidth = 5

// Editor owns the mutable authoring copy of a document.
type Editor struct {
	mu  sync.Mutex
	doc *templateformat.Document
}

// New creates an editor over a document. The editor takes ownership of the
// document; callers must not mutate it directly afterwards.
func New(doc *templateformat.Document) *Editor {
	if doc == nil {
		doc = templateformat.DefaultDocument()
	}
	return &Editor{doc: doc}
}

// Snapshot returns an immutable deep copy for a render pass.
func (e *Editor) Snapshot() *templateformat.Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.doc.Clone()
}

// AddField inserts a field into a section, minting an ID when the field has
// none.
func (e *Editor) AddField(sectionID string, field templateformat.Field, atIndex int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.doc.AddField(sectionID, ensureID(field), atIndex)
}

// UpsertField replaces or appends a field within a section.
func (e *Editor) UpsertField(sectionID string, field templateformat.Field) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.doc.UpsertField(sectionID, ensureID(field))
}

// RemoveField deletes a field from a section.
func (e *Editor) RemoveField(sectionID, fieldID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.doc.RemoveField(sectionID, fieldID)
	return ok
}

// MoveField relocates a field within or between sections, preserving its
// identity and properties.
func (e *Editor) MoveField(fromSectionID, toSectionID, fieldID string, atIndex int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.doc.MoveField(fromSectionID, toSectionID, fieldID, atIndex)
}

// AddColumn appends a column to a section's table. Existing active columns
// are scaled by 0.8 (floored), and the new column absorbs the remainder so
// the active width sum lands on exactly 100 regardless of rounding drift.
func (e *Editor) AddColumn(sectionID, fieldID string, column templateformat.Column) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.withTable(sectionID, fieldID, func(table *templateformat.Table) bool {
		scaledSum := 0
		for i := range table.Columns {
			if !table.Columns[i].IsActive() {
				continue
			}
			scaled := table.Columns[i].WidthPercent * 8 / 10
			table.Columns[i].WidthPercent = scaled
			scaledSum += scaled
		}

		column.WidthPercent = 100 - scaledSum
		if column.Alignment == "" {
			column.Alignment = "left"
		}
		column.Format = templateformat.FormatNone
		column.Active = nil

		table.Columns = append(table.Columns, column)
		return true
	})
}

// ResizeColumn shifts width between two adjacent columns. The pair's combined
// width is invariant; a delta that would push either side below the 5% floor
// is rejected as a no-op.
func (e *Editor) ResizeColumn(sectionID, fieldID string, leftIndex, rightIndex, delta int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.withTable(sectionID, fieldID, func(table *templateformat.Table) bool {
		if rightIndex != leftIndex+1 || leftIndex < 0 || rightIndex >= len(table.Columns) {
			return false
		}

		left := table.Columns[leftIndex].WidthPercent + delta
		right := table.Columns[rightIndex].WidthPercent - delta
		if left < MinColumnWidth || right < MinColumnWidth {
			return false
		}

		table.Columns[leftIndex].WidthPercent = left
		table.Columns[rightIndex].WidthPercent = right
		return true
	})
}

// RemoveColumn deletes a column. Remaining widths are not rebalanced; the
// soft 100% invariant may drift until the next add or reset.
func (e *Editor) RemoveColumn(sectionID, fieldID string, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.withTable(sectionID, fieldID, func(table *templateformat.Table) bool {
		if index < 0 || index >= len(table.Columns) {
			return false
		}
		table.Columns = append(table.Columns[:index], table.Columns[index+1:]...)
		return true
	})
}

// ResetColumns replaces a table's columns with the built-in 4-column default.
func (e *Editor) ResetColumns(sectionID, fieldID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.withTable(sectionID, fieldID, func(table *templateformat.Table) bool {
		table.Columns = templateformat.DefaultTable().Columns
		return true
	})
}

// withTable locates the table of a section and applies op to it: the
// embedded table of a table-kind section, or the table field identified by
// fieldID inside a plain section. Table fields are copied out, mutated, and
// written back so the document only ever holds value-typed fields.
func (e *Editor) withTable(sectionID, fieldID string, op func(*templateformat.Table) bool) bool {
	section := e.doc.FindSection(sectionID)
	if section == nil {
		return false
	}

	if section.Kind == templateformat.SectionKindTable {
		if section.Table == nil {
			section.Table = &templateformat.Table{}
		}
		return op(section.Table)
	}

	for i, f := range section.Fields {
		tf, ok := f.(templateformat.TableField)
		if !ok || tf.ID != fieldID {
			continue
		}

		if !op(&tf.Table) {
			return false
		}
		section.Fields[i] = tf
		return true
	}

	return false
}

func ensureID(field templateformat.Field) templateformat.Field {
	if field.FieldID() != "" {
		return field
	}

	id := uuid.New().String()
	switch f := field.(type) {
	case templateformat.TextField:
		f.ID = id
		return f
	case templateformat.CompositeField:
		f.ID = id
		return f
	case templateformat.ImageField:
		f.ID = id
		return f
	case templateformat.LineField:
		f.ID = id
		return f
	case templateformat.SpaceField:
		f.ID = id
		return f
	case templateformat.TableField:
		f.ID = id
		return f
	default:
		return field
	}
}
