package rules

import "fmt"

// Params is the raw configuration block of one rule instance, as decoded
// from the policy document.
type Params map[string]any

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns a required string parameter.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", missingParam(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, "string", v)
	}
	return s, nil
}

// StringDefault returns an optional string parameter, falling back to def.
func (p Params) StringDefault(key, def string) (string, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.String(key)
}

// StringList returns a required list-of-strings parameter. A scalar
// string is accepted as a one-element list.
func (p Params) StringList(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, missingParam(key)
	}
	switch list := v.(type) {
	case string:
		return []string{list}, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, wrongType(fmt.Sprintf("%s[%d]", key, i), "string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, wrongType(key, "list of strings", v)
	}
}

// StringListDefault returns an optional list-of-strings parameter.
func (p Params) StringListDefault(key string, def []string) ([]string, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.StringList(key)
}

// Int returns a required integer parameter.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, missingParam(key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, wrongType(key, "integer", v)
		}
		return int(n), nil
	default:
		return 0, wrongType(key, "integer", v)
	}
}

// IntDefault returns an optional integer parameter.
func (p Params) IntDefault(key string, def int) (int, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Int(key)
}

// Bool returns an optional boolean parameter, falling back to def.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(key, "boolean", v)
	}
	return b, nil
}

// StringMap returns an optional string-to-string map parameter.
func (p Params) StringMap(key string) (map[string]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]string:
		return m, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, item := range m {
			s, ok := item.(string)
			if !ok {
				return nil, wrongType(fmt.Sprintf("%s.%s", key, k), "string", item)
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, wrongType(key, "map of strings", v)
	}
}

// MapList returns an optional list-of-maps parameter, used by rules that
// take structured pairs.
func (p Params) MapList(key string) ([]map[string]any, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]map[string]any); ok {
			return typed, nil
		}
		return nil, wrongType(key, "list of maps", v)
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, wrongType(fmt.Sprintf("%s[%d]", key, i), "map", item)
		}
		out = append(out, m)
	}
	return out, nil
}

func missingParam(key string) error {
	return fmt.Errorf("missing required parameter %q", key)
}

func wrongType(key, want string, got any) error {
	return fmt.Errorf("parameter %q: expected %s, got %T", key, want, got)
}
