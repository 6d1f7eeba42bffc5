package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

// Timestamp keeps the text the API sent next to the parsed time. A timestamp
// the API filled with unparsable text still counts as present.
type Timestamp struct {
	Raw  string
	Time time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Raw: t.UTC().Format(time.RFC3339), Time: t.UTC()}
}

func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Raw: raw, Time: t}
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
		return Timestamp{Raw: raw, Time: time.UnixMilli(ms).UTC()}
	}
	return Timestamp{Raw: raw}
}

func (t Timestamp) IsSet() bool {
	return t.Raw != ""
}

func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

// Human renders the timestamp for notifications: local date and time when
// parsable, the raw text otherwise.
func (t Timestamp) Human() string {
	if !t.Valid() {
		return t.Raw
	}
	return t.Time.Local().Format("2006-01-02 15:04:05")
}

// Date renders the date part for tables, "-" when absent.
func (t Timestamp) Date() string {
	switch {
	case !t.IsSet():
		return "-"
	case !t.Valid():
		return t.Raw
	default:
		return t.Time.Local().Format(time.DateOnly)
	}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.IsSet() {
		return []byte("null"), nil
	}
	if t.Valid() {
		return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
	}
	return json.Marshal(t.Raw)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = timestampOf(v)
	return nil
}

func timestampOf(v any) Timestamp {
	switch x := v.(type) {
	case string:
		return ParseTimestamp(x)
	case json.Number:
		return ParseTimestamp(x.String())
	case float64:
		return ParseTimestamp(strconv.FormatInt(int64(x), 10))
	default:
		return Timestamp{}
	}
}

func firstTimestamp(m map[string]any, keys ...string) Timestamp {
	for _, k := range keys {
		if ts := timestampOf(m[k]); ts.IsSet() {
			return ts
		}
	}
	return Timestamp{}
}
