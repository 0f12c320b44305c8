package config

import (
	yaml "gopkg.in/yaml.v3"
)

// Specification of requested line wrapping behavior.
// ENUM(auto, none, preserve)
type WrapMode int

// MarshalYAML implements yaml.Marshaler so the enum is dumped by name.
func (x WrapMode) MarshalYAML() (any, error) {
	return x.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler so configuration files can use
// enum names.
func (x *WrapMode) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return x.UnmarshalText([]byte(name))
}
