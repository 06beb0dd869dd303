package schema

import (
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Descriptor files declare a row type and its key fields:
//
//	key: [k1, k2]
//	fields:
//	  - name: k1
//	    type: string
//	  - name: detailed_struct
//	    type: struct
//	    fields:
//	      - {name: long_field1, type: int32}
//	  - name: i
//	    type: array
//	    elem: {type: int32}
//
// The same shape is accepted in TOML.

type typeSpec struct {
	Name      string     `yaml:"name" toml:"name"`
	Type      string     `yaml:"type" toml:"type"`
	Elem      *typeSpec  `yaml:"elem" toml:"elem"`
	KeyType   *typeSpec  `yaml:"key_type" toml:"key_type"`
	ValueType *typeSpec  `yaml:"value_type" toml:"value_type"`
	Fields    []typeSpec `yaml:"fields" toml:"fields"`
}

type descriptor struct {
	Key    []string   `yaml:"key" toml:"key"`
	Fields []typeSpec `yaml:"fields" toml:"fields"`
}

// ParseYAML decodes a YAML schema descriptor into a row type and key names.
func ParseYAML(b []byte) (*Type, []string, error) {
	var d descriptor
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, nil, &Error{Reason: "yaml: " + err.Error()}
	}
	return d.build()
}

// ParseTOML decodes a TOML schema descriptor into a row type and key names.
func ParseTOML(b []byte) (*Type, []string, error) {
	var d descriptor
	if err := toml.Unmarshal(b, &d); err != nil {
		return nil, nil, &Error{Reason: "toml: " + err.Error()}
	}
	return d.build()
}

func (d *descriptor) build() (*Type, []string, error) {
	fields := make([]StructField, 0, len(d.Fields))
	for i := range d.Fields {
		sf := &d.Fields[i]
		if sf.Name == "" {
			return nil, nil, &Error{Reason: "top-level field without a name"}
		}
		t, err := sf.toType(sf.Name)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, F(sf.Name, t))
	}
	return StructOf(fields...), d.Key, nil
}

func (s *typeSpec) toType(path string) (*Type, error) {
	switch s.Type {
	case "bool":
		return Bool(), nil
	case "int32":
		return Int32(), nil
	case "int64":
		return Int64(), nil
	case "float32":
		return Float32(), nil
	case "float64":
		return Float64(), nil
	case "string", "str":
		return String(), nil
	case "call":
		return Call(), nil
	case "locus":
		return Locus(), nil
	case "struct":
		fields := make([]StructField, 0, len(s.Fields))
		for i := range s.Fields {
			sf := &s.Fields[i]
			if sf.Name == "" {
				return nil, &Error{Path: path, Reason: "struct field without a name"}
			}
			t, err := sf.toType(path + "." + sf.Name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, F(sf.Name, t))
		}
		return StructOf(fields...), nil
	case "array", "set":
		if s.Elem == nil {
			return nil, &Error{Path: path, Reason: "container without elem"}
		}
		elem, err := s.Elem.toType(path)
		if err != nil {
			return nil, err
		}
		if s.Type == "set" {
			return SetOf(elem), nil
		}
		return ArrayOf(elem), nil
	case "map":
		if s.KeyType == nil || s.ValueType == nil {
			return nil, &Error{Path: path, Reason: "map without key_type/value_type"}
		}
		k, err := s.KeyType.toType(path)
		if err != nil {
			return nil, err
		}
		v, err := s.ValueType.toType(path)
		if err != nil {
			return nil, err
		}
		return MapOf(k, v), nil
	case "":
		return nil, &Error{Path: path, Reason: "missing type"}
	default:
		return nil, &Error{Path: path, Reason: "unknown type " + s.Type}
	}
}
