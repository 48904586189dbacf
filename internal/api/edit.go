package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/posprint/receipt-templates/internal/editor"
	"github.com/posprint/receipt-templates/pkg/templateformat"
)

// editOp is one mutation in an edit event. Op selects the mutation; the
// remaining fields are read per op.
type editOp struct {
	Op        string                `json:"op"`
	SectionID string                `json:"sectionId"`
	FieldID   string                `json:"fieldId"`
	AtIndex   int                   `json:"atIndex"`
	Column    *templateformat.Column `json:"column"`
	Field     json.RawMessage       `json:"field"`

	// Column resize / removal
	LeftIndex  int `json:"leftIndex"`
	RightIndex int `json:"rightIndex"`
	Delta      int `json:"delta"`
	Index      int `json:"index"`

	// Field moves
	ToSectionID string `json:"toSectionId"`
}

// handleEditEvent applies a batch of editor operations to the given template
// and sends back the mutated document with its re-rendered fragment stream.
// Operations that target unknown sections, fields, or violate width limits
// are reported but do not abort the batch.
func (c *WSClient) handleEditEvent(data map[string]interface{}) {
	req := renderRequest{}

	if templateData, ok := data["template"]; ok {
		templateBytes, _ := json.Marshal(templateData)
		var doc templateformat.Document
		if err := json.Unmarshal(templateBytes, &doc); err != nil {
			c.sendError(fmt.Sprintf("invalid template: %v", err))
			return
		}
		req.Template = &doc
	}
	if id, ok := data["template_id"].(string); ok {
		req.TemplateID = id
	}
	if renderData, ok := data["data"].(map[string]interface{}); ok {
		req.Data = renderData
	}

	doc, err := c.server.loadTemplate(&req)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	opsBytes, _ := json.Marshal(data["operations"])
	var ops []editOp
	if err := json.Unmarshal(opsBytes, &ops); err != nil {
		c.sendError(fmt.Sprintf("invalid operations: %v", err))
		return
	}

	ed := editor.New(doc.Clone())

	var rejected []string
	for i, op := range ops {
		if !applyEditOp(ed, op) {
			rejected = append(rejected, fmt.Sprintf("operation %d (%s) rejected", i, op.Op))
		}
	}

	mutated := ed.Snapshot()
	rendered := c.server.assembler.Assemble(context.Background(), mutated, req.Data)

	response := map[string]interface{}{
		"success":  true,
		"template": mutated,
		"rendered": rendered,
	}
	if len(rejected) > 0 {
		response["rejected"] = rejected
	}

	c.sendResponse(response)
}

func applyEditOp(ed *editor.Editor, op editOp) bool {
	switch op.Op {
	case "add_field":
		field, err := templateformat.UnmarshalField(op.Field)
		if err != nil {
			return false
		}
		return ed.AddField(op.SectionID, field, op.AtIndex)

	case "upsert_field":
		field, err := templateformat.UnmarshalField(op.Field)
		if err != nil {
			return false
		}
		return ed.UpsertField(op.SectionID, field)

	case "remove_field":
		return ed.RemoveField(op.SectionID, op.FieldID)

	case "move_field":
		return ed.MoveField(op.SectionID, op.ToSectionID, op.FieldID, op.AtIndex)

	case "add_column":
		if op.Column == nil {
			return false
		}
		return ed.AddColumn(op.SectionID, op.FieldID, *op.Column)

	case "resize_column":
		return ed.ResizeColumn(op.SectionID, op.FieldID, op.LeftIndex, op.RightIndex, op.Delta)

	case "remove_column":
		return ed.RemoveColumn(op.SectionID, op.FieldID, op.Index)

	case "reset_columns":
		return ed.ResetColumns(op.SectionID, op.FieldID)

	default:
		return false
	}
}
