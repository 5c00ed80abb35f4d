package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bkcnorm/internal/domain"
	"bkcnorm/internal/normalize"
)

// Top-level sections of the mappings file.
const (
	keyMapSection = "Booking_Confirmation_Key_Name_Mapping"
	uomSection    = "UOM_Mapping"
	portSection   = "Port_Codes"
)

// PortEntry is one row of the static port code table.
type PortEntry struct {
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`
	CountryCode string   `yaml:"country_code"`
	PortCode    string   `yaml:"port_code"`
}

// Mappings holds the tables read from the mappings file. Key order and case
// are kept as written.
type Mappings struct {
	KeyPairs []normalize.KeyPair
	UOM      normalize.UOMTable
	Ports    []PortEntry
}

// LoadMappings reads and parses the mappings file at path.
func LoadMappings(path string) (*Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mappings file: %w", err)
	}
	return ParseMappings(data)
}

// ParseMappings parses a mappings document. Both the key map and the UOM table
// are required.
func ParseMappings(data []byte) (*Mappings, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mappings: %w", err)
	}

	m := &Mappings{}
	if len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("parsing mappings: top level must be a mapping (line %d)", root.Line)
		}
		for i := 0; i+1 < len(root.Content); i += 2 {
			name, val := root.Content[i].Value, root.Content[i+1]
			var err error
			switch name {
			case keyMapSection:
				m.KeyPairs, err = decodeKeyPairs(val)
			case uomSection:
				m.UOM, err = decodeUOMTable(val)
			case portSection:
				if !isNull(val) {
					err = val.Decode(&m.Ports)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
		}
	}

	if len(m.KeyPairs) == 0 {
		return nil, domain.ErrMissingKeyMap
	}
	if len(m.UOM) == 0 {
		return nil, domain.ErrMissingUOMTable
	}
	return m, nil
}

// KeyMap builds the key mapper from KeyPairs.
func (m *Mappings) KeyMap() (*normalize.KeyMap, error) {
	return normalize.NewKeyMap(m.KeyPairs)
}

// UOMCanonicalizer builds the unit canonicalizer from UOM.
func (m *Mappings) UOMCanonicalizer() (*normalize.UOMCanonicalizer, error) {
	return normalize.NewUOMCanonicalizer(m.UOM)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func decodeKeyPairs(n *yaml.Node) ([]normalize.KeyPair, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping (line %d)", n.Line)
	}
	pairs := make([]normalize.KeyPair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("value for %q must be a string (line %d)", k.Value, v.Line)
		}
		external := v.Value
		if isNull(v) {
			external = ""
		}
		pairs = append(pairs, normalize.KeyPair{Internal: k.Value, External: external})
	}
	return pairs, nil
}

func decodeUOMTable(n *yaml.Node) (normalize.UOMTable, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping (line %d)", n.Line)
	}
	table := make(normalize.UOMTable, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		entry := normalize.UOMEntry{Code: k.Value}
		switch v.Kind {
		case yaml.SequenceNode:
			for _, item := range v.Content {
				var syn any
				if err := item.Decode(&syn); err != nil {
					return nil, fmt.Errorf("synonym of %q: %w", k.Value, err)
				}
				entry.Synonyms = append(entry.Synonyms, syn)
			}
		case yaml.ScalarNode:
			if !isNull(v) {
				var syn any
				if err := v.Decode(&syn); err != nil {
					return nil, fmt.Errorf("synonym of %q: %w", k.Value, err)
				}
				entry.Synonyms = []any{syn}
			}
		default:
			return nil, fmt.Errorf("synonyms of %q must be a list (line %d)", k.Value, v.Line)
		}
		table = append(table, entry)
	}
	return table, nil
}
