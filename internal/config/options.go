package config

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without repeating type assertions at every call site. It is used for
// engine-specific knobs (storage.db.options) whose shape the core config
// does not want to know about.
type Options map[string]any

// String returns the string value for key, or def when key is missing or not
// a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key, or def when key is missing or not a
// bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key, or def. JSON numbers decode as float64,
// so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}
