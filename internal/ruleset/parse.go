package ruleset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/oxhq/stylefx/internal/model"
)

// Format identifies a configuration syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Preset is a user preset declared in a configuration file.
type Preset struct {
	Name       string
	Definition Fragment
}

// Document holds the rule related sections of a configuration file.
type Document struct {
	Rules   Fragment
	Presets []Preset
}

// ParseDocument reads the "rules" and "presets" sections of a configuration
// file, keeping the key order of the source. Other keys are ignored.
func ParseDocument(format Format, data []byte) (Document, error) {
	root, err := decodeOrdered(format, data)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if v, ok := root.get("rules"); ok {
		if doc.Rules, err = fragmentOf("rules", v); err != nil {
			return Document{}, err
		}
	}
	if v, ok := root.get("presets"); ok {
		presets, ok := v.(ordered)
		if !ok {
			return Document{}, model.Errorf(model.ErrInvalidConfig, "", "presets must be a mapping of name to rules")
		}
		for _, m := range presets {
			def, err := fragmentOf(m.key, m.value)
			if err != nil {
				return Document{}, err
			}
			doc.Presets = append(doc.Presets, Preset{Name: m.key, Definition: def})
		}
	}
	return doc, nil
}

// ParseFragment reads a document whose top level is a rules mapping, such
// as an inline --rules argument.
func ParseFragment(format Format, data []byte) (Fragment, error) {
	root, err := decodeOrdered(format, data)
	if err != nil {
		return nil, err
	}
	return fragmentOf("rules", root)
}

// ParseYAML reads a YAML rules mapping.
func ParseYAML(data []byte) (Fragment, error) { return ParseFragment(FormatYAML, data) }

// ParseJSON reads a JSON rules object.
func ParseJSON(data []byte) (Fragment, error) { return ParseFragment(FormatJSON, data) }

// ParseTOML reads a TOML rules table.
func ParseTOML(data []byte) (Fragment, error) { return ParseFragment(FormatTOML, data) }

func fragmentOf(section string, v any) (Fragment, error) {
	if v == nil {
		return Fragment{}, nil
	}
	members, ok := v.(ordered)
	if !ok {
		return nil, model.Errorf(model.ErrInvalidConfig, "", "%s must be a mapping, got %T", section, v)
	}

	frag := make(Fragment, 0, len(members))
	for _, m := range members {
		var val Value
		switch x := m.value.(type) {
		case bool:
			val = Value{Enabled: x}
		case ordered:
			val = WithOptions(x.plain())
		case nil:
			val = Enabled()
		default:
			return nil, model.Errorf(model.ErrInvalidConfig, "",
				"%s.%s: want true, false or a mapping of options, got %v", section, m.key, x)
		}
		frag = append(frag, Entry{Name: m.key, Value: val})
	}
	return frag, nil
}

// ordered is a mapping that keeps the key order of its source.
type ordered []member

type member struct {
	key   string
	value any
}

func (o ordered) get(key string) (any, bool) {
	for _, m := range o {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

func (o ordered) index(key string) int {
	return slices.IndexFunc(o, func(m member) bool { return m.key == key })
}

// plain converts to map[string]any, recursively, for option values.
func (o ordered) plain() map[string]any {
	out := make(map[string]any, len(o))
	for _, m := range o {
		out[m.key] = plainValue(m.value)
	}
	return out
}

func plainValue(v any) any {
	switch x := v.(type) {
	case ordered:
		return x.plain()
	case []any:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = plainValue(item)
		}
		return list
	}
	return v
}

func decodeOrdered(format Format, data []byte) (ordered, error) {
	var (
		v   any
		err error
	)
	switch format {
	case FormatYAML:
		v, err = decodeYAML(data)
	case FormatJSON:
		v, err = decodeJSON(data)
	case FormatTOML:
		v, err = decodeTOML(data)
	default:
		return nil, model.Errorf(model.ErrInvalidConfig, "", "unsupported format %q", format)
	}
	if err != nil {
		return nil, model.Wrap(model.ErrInvalidConfig, "", string(format), err)
	}
	switch root := v.(type) {
	case ordered:
		return root, nil
	case nil:
		return ordered{}, nil
	}
	return nil, model.Errorf(model.ErrInvalidConfig, "", "top level of %s document must be a mapping", format)
}

func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromYAML(&doc)
}

func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		out := make(ordered, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, member{key: n.Content[i].Value, value: v})
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func decodeJSON(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := fromJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func fromJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := ordered{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := fromJSON(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, member{key: keyTok.(string), value: v})
			}
			_, err := dec.Token()
			return out, err
		case '[':
			out := []any{}
			for dec.More() {
				v, err := fromJSON(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			_, err := dec.Token()
			return out, err
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		return t.Float64()
	}
	return tok, nil
}

// decodeTOML rebuilds key order from the metadata, which lists keys in
// document order.
func decodeTOML(data []byte) (any, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	root := fromTOML(raw).(ordered)
	for _, key := range md.Keys() {
		root = moveLast(root, key)
	}
	return root, nil
}

// fromTOML converts decoded TOML values; tables start with sorted keys.
func fromTOML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(ordered, 0, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			out = append(out, member{key: k, value: fromTOML(x[k])})
		}
		return out
	case []map[string]any:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = fromTOML(item)
		}
		return list
	case []any:
		list := make([]any, len(x))
		for i, item := range x {
			list[i] = fromTOML(item)
		}
		return list
	case int64:
		return int(x)
	}
	return v
}

// moveLast moves the member addressed by path to the end of its table.
// Applied over the keys in document order, this restores that order.
func moveLast(o ordered, path toml.Key) ordered {
	if len(path) == 0 {
		return o
	}
	i := o.index(path[0])
	if i < 0 {
		return o
	}
	m := o[i]
	if len(path) > 1 {
		sub, ok := m.value.(ordered)
		if !ok {
			return o
		}
		o[i].value = moveLast(sub, path[1:])
		return o
	}
	o = append(o[:i:i], o[i+1:]...)
	return append(o, m)
}
