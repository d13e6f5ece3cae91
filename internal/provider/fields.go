package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Provider timestamps without a zone are taken as local wall-clock time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func lookup(doc gjson.Result, paths []string) (gjson.Result, string, bool) {
	for _, p := range paths {
		r := doc.Get(p)
		if r.Exists() && r.Type != gjson.Null {
			return r, p, true
		}
	}
	return gjson.Result{}, "", false
}

func missing(paths []string) error {
	return fmt.Errorf("%w: %s", ErrFieldMissing, strings.Join(paths, "|"))
}

func stringField(doc gjson.Result, paths ...string) (string, error) {
	r, p, ok := lookup(doc, paths)
	if !ok {
		return "", missing(paths)
	}
	if r.Type != gjson.String {
		return "", fmt.Errorf("%w: %s is %s", ErrFieldType, p, r.Type)
	}
	return r.Str, nil
}

func numberField(doc gjson.Result, paths ...string) (float64, error) {
	r, p, ok := lookup(doc, paths)
	if !ok {
		return 0, missing(paths)
	}
	if r.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is %s", ErrFieldType, p, r.Type)
	}
	return r.Num, nil
}

func intField(doc gjson.Result, paths ...string) (int, error) {
	n, err := numberField(doc, paths...)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func boolField(doc gjson.Result, paths ...string) (bool, error) {
	r, p, ok := lookup(doc, paths)
	if !ok {
		return false, missing(paths)
	}
	if r.Type != gjson.True && r.Type != gjson.False {
		return false, fmt.Errorf("%w: %s is %s", ErrFieldType, p, r.Type)
	}
	return r.Bool(), nil
}

func stringsField(doc gjson.Result, paths ...string) ([]string, error) {
	r, p, ok := lookup(doc, paths)
	if !ok {
		return nil, missing(paths)
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: %s is not an array", ErrFieldType, p)
	}

	items := r.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s contains %s", ErrFieldType, p, item.Type)
		}
		out = append(out, item.Str)
	}
	return out, nil
}

func timeField(doc gjson.Result, paths ...string) (time.Time, error) {
	s, err := stringField(doc, paths...)
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(s)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", ErrFieldType, s)
}
