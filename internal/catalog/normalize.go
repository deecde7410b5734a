package catalog

import (
	"fmt"
	"reflect"
	"strings"
)

// Normalize turns any field value into its comparison form: trimmed and
// lowercased. nil and nil pointers yield "".
func Normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(x))
	case *string:
		if x == nil {
			return ""
		}
		return Normalize(*x)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		return Normalize(rv.Elem().Interface())
	}
	return Normalize(fmt.Sprint(v))
}

func containsNorm(value, needle string) bool {
	return strings.Contains(Normalize(value), Normalize(needle))
}
