package config

import "reflect"

// envNames maps struct field names to their `env` tag.
func envNames(v interface{}) map[string]string {
	out := map[string]string{}
	t := reflect.TypeOf(v)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name, ok := f.Tag.Lookup("env"); ok {
			out[f.Name] = name
		}
	}
	return out
}
