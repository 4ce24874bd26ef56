package tile

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
)

// Config describes which row fields map to which visual channel.
// Each chart kind has its own concrete config type.
type Config interface {
	Kind() Kind
	clone() Config
}

// BarConfig configures a bar chart: one numeric field per row.
type BarConfig struct {
	DataKey string `json:"data_key"`
	Color   string `json:"color,omitempty"`
}

// SeriesConfig configures line and area charts: one series per data key.
type SeriesConfig struct {
	Area     bool     `json:"-"`
	DataKeys []string `json:"data_keys"`
	Colors   []string `json:"colors,omitempty"`
}

// ScatterConfig configures a scatter plot. ZKey is optional.
type ScatterConfig struct {
	XKey  string `json:"x_key"`
	YKey  string `json:"y_key"`
	ZKey  string `json:"z_key,omitempty"`
	Color string `json:"color,omitempty"`
}

func (BarConfig) Kind() Kind { return KindBar }

func (c SeriesConfig) Kind() Kind {
	if c.Area {
		return KindArea
	}
	return KindLine
}

func (ScatterConfig) Kind() Kind { return KindScatter }

func (c BarConfig) clone() Config { return c }

func (c SeriesConfig) clone() Config {
	c.DataKeys = slices.Clone(c.DataKeys)
	c.Colors = slices.Clone(c.Colors)
	return c
}

func (c ScatterConfig) clone() Config { return c }

// ColorAt returns the color for series i, cycling through Colors.
// An empty palette yields fallback.
func (c SeriesConfig) ColorAt(i int, fallback string) string {
	if len(c.Colors) == 0 {
		return fallback
	}
	return c.Colors[i%len(c.Colors)]
}

// configEnvelope is the wire form of a Config.
type configEnvelope struct {
	Kind     Kind     `json:"kind"`
	DataKey  string   `json:"data_key,omitempty"`
	DataKeys []string `json:"data_keys,omitempty"`
	Colors   []string `json:"colors,omitempty"`
	XKey     string   `json:"x_key,omitempty"`
	YKey     string   `json:"y_key,omitempty"`
	ZKey     string   `json:"z_key,omitempty"`
	Color    string   `json:"color,omitempty"`
}

func envelopeOf(c Config) configEnvelope {
	switch v := c.(type) {
	case BarConfig:
		return configEnvelope{Kind: KindBar, DataKey: v.DataKey, Color: v.Color}
	case SeriesConfig:
		return configEnvelope{Kind: v.Kind(), DataKeys: v.DataKeys, Colors: v.Colors}
	case ScatterConfig:
		return configEnvelope{Kind: KindScatter, XKey: v.XKey, YKey: v.YKey, ZKey: v.ZKey, Color: v.Color}
	}
	return configEnvelope{}
}

func (e configEnvelope) config() (Config, error) {
	switch e.Kind {
	case KindBar:
		return BarConfig{DataKey: e.DataKey, Color: e.Color}, nil
	case KindLine, KindArea:
		return SeriesConfig{Area: e.Kind == KindArea, DataKeys: e.DataKeys, Colors: e.Colors}, nil
	case KindScatter:
		return ScatterConfig{XKey: e.XKey, YKey: e.YKey, ZKey: e.ZKey, Color: e.Color}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidTile, "invalid config kind: %q", e.Kind)
}

// DefaultConfig returns a usable config for kind k.
func DefaultConfig(k Kind) Config {
	switch k {
	case KindBar:
		return BarConfig{DataKey: "value", Color: "#8884d8"}
	case KindLine:
		return SeriesConfig{DataKeys: []string{"value"}, Colors: []string{"#8884d8"}}
	case KindArea:
		return SeriesConfig{Area: true, DataKeys: []string{"value"}, Colors: []string{"#8884d8"}}
	case KindScatter:
		return ScatterConfig{XKey: "x", YKey: "y", Color: "#ff8042"}
	}
	return nil
}

// ValidateConfig checks that c is present, matches kind k and names its fields.
func ValidateConfig(k Kind, c Config) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidTile, "missing %s config", k)
	}
	if c.Kind() != k {
		return errors.New(errors.ErrCodeInvalidTile, "config kind %s does not match tile kind %s", c.Kind(), k)
	}
	switch v := c.(type) {
	case BarConfig:
		if v.DataKey == "" {
			return errors.New(errors.ErrCodeInvalidTile, "bar config requires data_key")
		}
	case SeriesConfig:
		if len(v.DataKeys) == 0 {
			return errors.New(errors.ErrCodeInvalidTile, "%s config requires data_keys", k)
		}
	case ScatterConfig:
		if v.XKey == "" || v.YKey == "" {
			return errors.New(errors.ErrCodeInvalidTile, "scatter config requires x_key and y_key")
		}
	default:
		return errors.New(errors.ErrCodeInvalidTile, "unsupported config type %T", c)
	}
	return nil
}

func marshalConfig(c Config) (json.RawMessage, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(envelopeOf(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func unmarshalConfig(data json.RawMessage, k Kind) (Config, error) {
	if len(data) == 0 || string(data) == "null" {
		return DefaultConfig(k), nil
	}
	var env configEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if env.Kind == "" {
		env.Kind = k
	}
	return env.config()
}

// ParseConfig decodes a config envelope for a tile of kind k. Empty input
// yields [DefaultConfig]; an envelope for another kind is rejected.
func ParseConfig(data json.RawMessage, k Kind) (Config, error) {
	c, err := unmarshalConfig(data, k)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTile, err, "invalid config")
	}
	if c.Kind() != k {
		return nil, errors.New(errors.ErrCodeInvalidTile, "config is for %s, tile is %s", c.Kind(), k)
	}
	return c, nil
}
