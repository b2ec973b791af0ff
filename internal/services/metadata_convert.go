package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
)

var numericValue = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ConvertMetadataEntriesToJSON flattens stored entries into an object. Keys typed date, string or
// text stay raw strings; number-typed keys and keys without a definition become numbers when the
// whole value is numeric.
func ConvertMetadataEntriesToJSON(entries []types.MetadataEntry, schema []*types.MetadataSchema) map[string]any {
	dataTypes := make(map[string]types.MetadataDataType, len(schema))
	for _, def := range schema {
		if def != nil {
			dataTypes[def.Key] = def.DataType
		}
	}

	out := make(map[string]any, len(entries))
	for _, e := range entries {
		switch dataTypes[e.Key] {
		case types.DataTypeDate, types.DataTypeString, types.DataTypeText:
			out[e.Key] = e.Value
		default:
			out[e.Key] = coerceNumber(e.Value)
		}
	}
	return out
}

func coerceNumber(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if !numericValue.MatchString(trimmed) {
		return raw
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return raw
	}
	return f
}

// StringifyMetadata turns a request metadata object into stored string values. Null values are
// dropped.
func StringifyMetadata(in map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for rawKey, v := range in {
		key := strings.TrimSpace(rawKey)
		if key == "" {
			return nil, fmt.Errorf("metadata keys must not be blank")
		}
		if len(key) > 100 {
			return nil, fmt.Errorf("metadata key %q is longer than 100 characters", key)
		}
		s, ok, err := stringifyValue(v)
		if err != nil {
			return nil, fmt.Errorf("metadata %q: %w", key, err)
		}
		if ok {
			out[key] = s
		}
	}
	return out, nil
}

func stringifyValue(v any) (string, bool, error) {
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true, nil
	case json.Number:
		return t.String(), true, nil
	case int:
		return strconv.Itoa(t), true, nil
	case int64:
		return strconv.FormatInt(t, 10), true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return "", false, err
		}
		return string(raw), true, nil
	}
}

// validateMetadataValues checks values against the definitions and returns one message per
// problem, in schema order.
func validateMetadataValues(values map[string]string, schema []*types.MetadataSchema) []string {
	problems := []string{}
	defs := append([]*types.MetadataSchema(nil), schema...)
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].DisplayOrder != defs[j].DisplayOrder {
			return defs[i].DisplayOrder < defs[j].DisplayOrder
		}
		return defs[i].Key < defs[j].Key
	})
	for _, def := range defs {
		v, ok := values[def.Key]
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			if def.IsRequired {
				problems = append(problems, fmt.Sprintf("%s is required", def.Key))
			}
			continue
		}
		switch def.DataType {
		case types.DataTypeNumber:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				problems = append(problems, fmt.Sprintf("%s must be a number", def.Key))
			}
		case types.DataTypeDate:
			if !isDate(v) {
				problems = append(problems, fmt.Sprintf("%s must be a date (YYYY-MM-DD)", def.Key))
			}
		}
	}
	return problems
}

func isDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
