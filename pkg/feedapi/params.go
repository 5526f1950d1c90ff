package feedapi

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Params builds query values, dropping empty entries: nil, blank strings,
// empty slices, zero numbers and false.
func Params(params map[string]any) url.Values {
	values := url.Values{}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := params[key]
		if v == nil {
			continue
		}

		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.String:
			if strings.TrimSpace(rv.String()) == "" {
				continue
			}
		case reflect.Slice, reflect.Array:
			if rv.Len() == 0 {
				continue
			}
			for i := range rv.Len() {
				values.Add(key, fmt.Sprint(rv.Index(i).Interface()))
			}
			continue
		case reflect.Pointer:
			if rv.IsNil() {
				continue
			}
			v = rv.Elem().Interface()
		default:
			if rv.IsZero() {
				continue
			}
		}

		values.Set(key, fmt.Sprint(v))
	}

	return values
}
