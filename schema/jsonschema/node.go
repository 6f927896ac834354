package jsonschema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

type schemaNode struct {
	Type              string
	Format            string
	Description       string
	Properties        map[string]*schemaNode
	Required          []string
	Enum              []any
	Const             any
	Minimum           *float64
	Maximum           *float64
	additionalMapping map[string]any
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func (n *schemaNode) baseMap() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Format != "" {
		result["format"] = n.Format
	}
	if n.Description != "" {
		result["description"] = n.Description
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.Const != nil {
		result["const"] = n.Const
	}
	if n.Minimum != nil {
		result["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		result["maximum"] = *n.Maximum
	}
	return result
}

func (n *schemaNode) inline() map[string]any {
	result := n.baseMap()

	if len(n.Properties) > 0 || n.Type == "object" {
		props := make(map[string]any, len(n.Properties))
		names := make([]string, 0, len(n.Properties))
		for name := range n.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			props[name] = n.Properties[name].inline()
		}
		result["properties"] = props
	}

	if len(n.Required) > 0 {
		names := append([]string{}, n.Required...)
		sort.Strings(names)
		result["required"] = names
	}

	if len(n.additionalMapping) > 0 {
		keys := make([]string, 0, len(n.additionalMapping))
		for key := range n.additionalMapping {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			result[key] = n.additionalMapping[key]
		}
	}

	return result
}

func (n *schemaNode) ensureAdditional() map[string]any {
	if n.additionalMapping == nil {
		n.additionalMapping = map[string]any{}
	}
	return n.additionalMapping
}

func (n *schemaNode) Digest() string {
	payload := n.inline()
	data, err := json.Marshal(payload)
	if err != nil {
		// json.Marshal should never fail for the constructed payload; fall back to
		// an empty digest to avoid panics.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
