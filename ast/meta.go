package ast

import (
	"encoding/json"
	"fmt"
)

// Meta is the document metadata map.
type Meta map[string]MetaValue

// MetaValue is one metadata value: string, bool, inline run, block run,
// list or nested map.
type MetaValue interface {
	metaValue()
}

type MetaString string

type MetaBool bool

type MetaInlines []Inline

type MetaBlocks []Block

type MetaList []MetaValue

type MetaMap map[string]MetaValue

func (MetaString) metaValue()  {}
func (MetaBool) metaValue()    {}
func (MetaInlines) metaValue() {}
func (MetaBlocks) metaValue()  {}
func (MetaList) metaValue()    {}
func (MetaMap) metaValue()     {}

// Text renders a metadata value as plain text; used for titles and similar
// single-line fields.
func (m Meta) Text(key string) string {
	switch v := m[key].(type) {
	case MetaString:
		return string(v)
	case MetaInlines:
		return Stringify(v)
	}
	return ""
}

// Inlines returns a metadata value as inline content when possible.
func (m Meta) Inlines(key string) []Inline {
	switch v := m[key].(type) {
	case MetaString:
		return []Inline{&Str{Text: string(v)}}
	case MetaInlines:
		return v
	}
	return nil
}

func decodeMetaValue(raw json.RawMessage) (MetaValue, error) {
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("metadata value: %w", err)
	}
	switch e.T {
	case "MetaString":
		var s string
		if err := json.Unmarshal(e.C, &s); err != nil {
			return nil, fmt.Errorf("MetaString: %w", err)
		}
		return MetaString(s), nil
	case "MetaBool":
		var b bool
		if err := json.Unmarshal(e.C, &b); err != nil {
			return nil, fmt.Errorf("MetaBool: %w", err)
		}
		return MetaBool(b), nil
	case "MetaInlines":
		ins, err := decodeInlines(e.C, "MetaInlines")
		if err != nil {
			return nil, err
		}
		return MetaInlines(ins), nil
	case "MetaBlocks":
		var raws []json.RawMessage
		if err := json.Unmarshal(e.C, &raws); err != nil {
			return nil, fmt.Errorf("MetaBlocks: %w", err)
		}
		blocks, err := decodeBlocks(raws)
		if err != nil {
			return nil, err
		}
		return MetaBlocks(blocks), nil
	case "MetaList":
		var raws []json.RawMessage
		if err := json.Unmarshal(e.C, &raws); err != nil {
			return nil, fmt.Errorf("MetaList: %w", err)
		}
		list := make(MetaList, 0, len(raws))
		for _, r := range raws {
			v, err := decodeMetaValue(r)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case "MetaMap":
		var raws map[string]json.RawMessage
		if err := json.Unmarshal(e.C, &raws); err != nil {
			return nil, fmt.Errorf("MetaMap: %w", err)
		}
		mm := make(MetaMap, len(raws))
		for k, r := range raws {
			v, err := decodeMetaValue(r)
			if err != nil {
				return nil, fmt.Errorf("metadata %q: %w", k, err)
			}
			mm[k] = v
		}
		return mm, nil
	}
	return nil, fmt.Errorf("unknown metadata value %q", e.T)
}
