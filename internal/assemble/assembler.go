package assemble

import (
	"context"

	"github.com/posprint/receipt-templates/internal/binding"
	"github.com/posprint/receipt-templates/internal/resolve"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// Assembler orchestrates a render pass: view bindings first, then a
// synchronous walk over the visible sections in order.
type Assembler struct {
	bindings  *binding.Resolver
	formatter *resolve.Formatter
	tables    *TableEngine
}

// New creates an assembler. The binding resolver may wrap a nil executor for
// offline rendering.
func New(bindings *binding.Resolver, formatter *resolve.Formatter) *Assembler {
	return &Assembler{
		bindings:  bindings,
		formatter: formatter,
		tables:    NewTableEngine(formatter),
	}
}

// RenderedDocument is the assembled output: the ordered fragment stream plus
// the resolved ext contents for diagnostics.
type RenderedDocument struct {
	PaperWidthPx int                    `json:"paperWidthPx"`
	Padding      int                    `json:"padding"`
	Fragments    []Fragment             `json:"fragments"`
	Ext          map[string]interface{} `json:"ext"`
}

// Assemble renders a document snapshot against a raw data payload. Bindings
// are resolved first (concurrently, joined before the walk), then each
// visible section contributes its fragments in order. Assemble itself never
// fails; partial data produces a best-effort receipt.
func (a *Assembler) Assemble(ctx context.Context, doc *templateformat.Document, data map[string]interface{}) *RenderedDocument {
	ext := a.bindings.ResolveAll(ctx, doc.Sections, data)
	renderCtx := layerContext(data, ext)

	out := &RenderedDocument{
		PaperWidthPx: templateformat.PaperWidthPixels(doc.PaperWidth),
		Padding:      doc.Padding,
		Ext:          ext,
		Fragments:    []Fragment{},
	}

	items := itemsOf(renderCtx)

	for _, section := range doc.SortedVisibleSections() {
		if section.Kind == templateformat.SectionKindTable {
			table := templateformat.Table{}
			if section.Table != nil {
				table = *section.Table
			}
			rendered := a.tables.Layout(section.ID, table, items)
			out.Fragments = append(out.Fragments, rendered.Fragments()...)
			continue
		}

		for _, field := range section.Fields {
			out.Fragments = append(out.Fragments, a.renderField(section.ID, field, renderCtx, items)...)
		}
	}

	return out
}

// renderField dispatches one field to its fragment form. The switch is
// exhaustive over the field union; an unknown variant renders nothing.
func (a *Assembler) renderField(sectionID string, field templateformat.Field, renderCtx map[string]interface{}, items []map[string]interface{}) []Fragment {
	switch f := field.(type) {
	case templateformat.TextField:
		return a.textFragments(sectionID, f, renderCtx)

	case templateformat.CompositeField:
		return []Fragment{{
			Kind:      FragmentText,
			SectionID: sectionID,
			FieldID:   f.ID,
			Text:      resolve.Compose(renderCtx, f.Text),
			Alignment: f.Alignment,
			FontSize:  f.FontSize,
			Bold:      f.Bold,
		}}

	case templateformat.ImageField:
		source := resolve.Stringify(resolve.Path(renderCtx, f.Source))
		if source == "" {
			return nil
		}
		return []Fragment{{
			Kind:      FragmentImage,
			SectionID: sectionID,
			FieldID:   f.ID,
			Source:    source,
			Height:    f.Height,
			Alignment: f.Alignment,
		}}

	case templateformat.LineField:
		style := f.Style
		if style == "" {
			style = templateformat.LineSolid
		}
		return []Fragment{{
			Kind:      FragmentLine,
			SectionID: sectionID,
			FieldID:   f.ID,
			Style:     style,
		}}

	case templateformat.SpaceField:
		return []Fragment{{
			Kind:      FragmentSpace,
			SectionID: sectionID,
			FieldID:   f.ID,
			Height:    f.Height,
		}}

	case templateformat.TableField:
		rendered := a.tables.Layout(sectionID, f.Table, items)
		return rendered.Fragments()

	default:
		return nil
	}
}

func (a *Assembler) textFragments(sectionID string, f templateformat.TextField, renderCtx map[string]interface{}) []Fragment {
	var value interface{}
	if f.Source != "" {
		value = resolve.Path(renderCtx, f.Source)
	} else if f.Text != "" {
		value = f.Text
	}

	var text string
	if f.Format != templateformat.FormatNone && value != nil {
		text = a.formatter.Format(value, f.Format)
	} else {
		text = resolve.Stringify(value)
	}

	// Empty value and no label renders nothing at all.
	if text == "" && f.Label == "" {
		return nil
	}

	return []Fragment{{
		Kind:         FragmentText,
		SectionID:    sectionID,
		FieldID:      f.ID,
		Text:         text,
		Label:        f.Label,
		Alignment:    f.Alignment,
		FontSize:     f.FontSize,
		Bold:         f.Bold,
		MarginTop:    f.MarginTop,
		MarginBottom: f.MarginBottom,
	}}
}

// layerContext builds the final render context: a shallow copy of the raw
// payload with resolved ext contributions layered over any pre-populated ext.
func layerContext(data, ext map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		out[k] = v
	}

	merged := map[string]interface{}{}
	if existing, ok := out["ext"].(map[string]interface{}); ok {
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range ext {
		merged[k] = v
	}
	out["ext"] = merged

	return out
}

// itemsOf extracts the items collection from the context, tolerating both
// decoded-JSON and native slice shapes.
func itemsOf(renderCtx map[string]interface{}) []map[string]interface{} {
	switch raw := renderCtx["items"].(type) {
	case []map[string]interface{}:
		return raw
	case []interface{}:
		items := make([]map[string]interface{}, 0, len(raw))
		for _, entry := range raw {
			if item, ok := entry.(map[string]interface{}); ok {
				items = append(items, item)
			}
		}
		return items
	default:
		return nil
	}
}
