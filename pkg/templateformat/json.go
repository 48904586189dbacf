package templateformat

import (
	"encoding/json"
	"fmt"
)

// Field type discriminator values used on the wire
const (
	fieldTypeText      = "text"
	fieldTypeComposite = "composite"
	fieldTypeImage     = "image"
	fieldTypeLine      = "line"
	fieldTypeSpace     = "space"
	fieldTypeTable     = "table"
)

// UnmarshalField decodes a single field record, dispatching on its "type" key.
func UnmarshalField(data []byte) (Field, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse field: %w", err)
	}

	switch probe.Type {
	case fieldTypeText:
		var f TextField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f, nil
	case fieldTypeComposite:
		var f CompositeField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f, nil
	case fieldTypeImage:
		var f ImageField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f, nil
	case fieldTypeLine:
		var f LineField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f, nil
	case fieldTypeSpace:
		var f SpaceField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f, nil
	case fieldTypeTable:
		var f TableField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown field type: %q", probe.Type)
	}
}

// MarshalJSON implementations add the "type" discriminator back.

func (f TextField) MarshalJSON() ([]byte, error) {
	type alias TextField
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{fieldTypeText, alias(f)})
}

func (f CompositeField) MarshalJSON() ([]byte, error) {
	type alias CompositeField
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{fieldTypeComposite, alias(f)})
}

func (f ImageField) MarshalJSON() ([]byte, error) {
	type alias ImageField
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{fieldTypeImage, alias(f)})
}

func (f LineField) MarshalJSON() ([]byte, error) {
	type alias LineField
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{fieldTypeLine, alias(f)})
}

func (f SpaceField) MarshalJSON() ([]byte, error) {
	type alias SpaceField
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{fieldTypeSpace, alias(f)})
}

func (f TableField) MarshalJSON() ([]byte, error) {
	type alias TableField
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{fieldTypeTable, alias(f)})
}

// UnmarshalJSON decodes a section, tolerating loosely-typed field records.
// Fields of an unknown type are dropped rather than failing the document, and
// a missing "visible" key defaults to true.
func (s *Section) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID          string            `json:"id"`
		Name        string            `json:"name"`
		Order       int               `json:"order"`
		Visible     *bool             `json:"visible"`
		Kind        string            `json:"kind"`
		Fields      []json.RawMessage `json:"fields"`
		Table       *Table            `json:"table"`
		ViewBinding *ViewBinding      `json:"viewBinding"`
	}

	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("failed to parse section: %w", err)
	}

	s.ID = temp.ID
	s.Name = temp.Name
	s.Order = temp.Order
	s.Kind = temp.Kind
	s.Table = temp.Table
	s.ViewBinding = temp.ViewBinding

	s.Visible = true
	if temp.Visible != nil {
		s.Visible = *temp.Visible
	}

	s.Fields = nil
	for _, raw := range temp.Fields {
		field, err := UnmarshalField(raw)
		if err != nil {
			// Loosely-typed documents are tolerated: skip what we cannot decode.
			continue
		}
		s.Fields = append(s.Fields, field)
	}

	return nil
}
