package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// BuildBody applies assignments to base (an empty object when nil).
//
//	title=Analyst          string
//	salary=5000            number (any valid JSON is set raw)
//	tags=["a","b"]         array
//	bucket.name=North      nested path
//	-bucket.name           delete
func BuildBody(base []byte, sets []string) ([]byte, error) {
	body := base
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := requireObject(body); err != nil {
		return nil, err
	}
	var err error
	for _, set := range sets {
		if path, ok := strings.CutPrefix(set, "-"); ok && !strings.Contains(set, "=") {
			if body, err = sjson.DeleteBytes(body, path); err != nil {
				return nil, fmt.Errorf("deleting %q: %w", path, err)
			}
			continue
		}
		path, value, ok := strings.Cut(set, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid assignment %q: want key=value", set)
		}
		if gjson.Valid(value) {
			body, err = sjson.SetRawBytes(body, path, []byte(value))
		} else {
			body, err = sjson.SetBytes(body, path, value)
		}
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", path, err)
		}
	}
	return body, nil
}

// ApplyScalars writes edited scalar values back into raw. Each value keeps
// the JSON type of the original field when it still parses as that type.
func ApplyScalars(raw []byte, fields []domain.Field, values map[string]string) ([]byte, error) {
	out := append([]byte(nil), raw...)
	var err error
	for _, f := range fields {
		v, ok := values[f.Key]
		if !ok || v == f.Value {
			continue
		}
		path := escapeKey(f.Key)
		switch f.Kind {
		case gjson.Number:
			if _, perr := strconv.ParseFloat(strings.TrimSpace(v), 64); perr == nil {
				out, err = sjson.SetRawBytes(out, path, []byte(strings.TrimSpace(v)))
				break
			}
			out, err = sjson.SetBytes(out, path, v)
		case gjson.True, gjson.False:
			if b, perr := strconv.ParseBool(strings.TrimSpace(v)); perr == nil {
				out, err = sjson.SetBytes(out, path, b)
				break
			}
			out, err = sjson.SetBytes(out, path, v)
		default:
			out, err = sjson.SetBytes(out, path, v)
		}
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", f.Key, err)
		}
	}
	return out, nil
}

// escapeKey quotes sjson path syntax in a top-level key.
func escapeKey(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}
