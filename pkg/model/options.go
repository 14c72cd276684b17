package model

// SerializeOptions are the standard inclusion/exclusion options understood by
// model serializers. Only takes precedence over Except. Methods names model
// members whose results are added under the name as given. Include names
// associations that are serialized recursively with their own options.
type SerializeOptions struct {
	Only    []string                    `json:"only,omitempty" yaml:"only,omitempty"`
	Except  []string                    `json:"except,omitempty" yaml:"except,omitempty"`
	Methods []string                    `json:"methods,omitempty" yaml:"methods,omitempty"`
	Include map[string]SerializeOptions `json:"include,omitempty" yaml:"include,omitempty"`
}

// Keep reports whether key survives the Only/Except filters.
func (o SerializeOptions) Keep(key string) bool {
	if len(o.Only) > 0 {
		return contains(o.Only, key)
	}
	return !contains(o.Except, key)
}

// Clone returns a deep copy of the options.
func (o SerializeOptions) Clone() SerializeOptions {
	out := SerializeOptions{
		Only:    append([]string(nil), o.Only...),
		Except:  append([]string(nil), o.Except...),
		Methods: append([]string(nil), o.Methods...),
	}
	if len(o.Include) > 0 {
		out.Include = make(map[string]SerializeOptions, len(o.Include))
		for name, nested := range o.Include {
			out.Include[name] = nested.Clone()
		}
	}
	return out
}

func contains(list []string, key string) bool {
	for _, entry := range list {
		if entry == key {
			return true
		}
	}
	return false
}
