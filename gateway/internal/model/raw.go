package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// decodeObject reads a JSON object keeping numbers as json.Number so ids
// survive without float rounding.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// firstString returns the first key holding a non-empty scalar, coerced to string.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := scalar(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// firstInt returns the first key holding a number or numeric string.
func firstInt(m map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				return int(i), true
			}
			if f, err := v.Float64(); err == nil {
				return int(f), true
			}
		case float64:
			return int(v), true
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}

// DecodeList accepts a bare array or an object wrapping one under any of keys.
// Anything else decodes to an empty list.
func DecodeList[T any](data []byte, keys ...string) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}, nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	if data[0] != '{' {
		return []T{}, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	for _, k := range keys {
		raw := bytes.TrimSpace(envelope[k])
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return []T{}, nil
}

// DecodeItem accepts an object either bare or wrapped under key.
func DecodeItem[T any](data []byte, key string) (T, error) {
	var item T
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err == nil {
		if raw := bytes.TrimSpace(envelope[key]); len(raw) > 0 && raw[0] == '{' {
			err := json.Unmarshal(raw, &item)
			return item, err
		}
	}
	err := json.Unmarshal(data, &item)
	return item, err
}
