package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UnmarshalJSON decodes a record field by field. Values of a drifted type are
// coerced where the intent is clear (numeric strings, numeric ids, "true"),
// otherwise the field is left unset for Normalize to default. Only a value
// that is not an object fails.
func (r *RawNote) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = RawNote{}
	if v, ok := lenientString(fields["id"]); ok {
		r.ID = v
	}
	if v, ok := lenientString(fields["title"]); ok {
		r.Title = &v
	}
	if v, ok := lenientString(fields["type"]); ok {
		r.Type = Type(v)
	}
	if v, ok := lenientString(fields["content"]); ok {
		r.Content = v
	}
	if v, ok := lenientInt(fields["createdAt"]); ok {
		r.CreatedAt = &v
	}
	if v, ok := lenientInt(fields["updatedAt"]); ok {
		r.UpdatedAt = &v
	}
	if v, ok := lenientFloat(fields["order"]); ok {
		r.Order = &v
	}
	if v, ok := lenientString(fields["color"]); ok {
		r.Color = &v
	}
	if v, ok := lenientBool(fields["pinned"]); ok {
		r.Pinned = &v
	}
	if v, ok := lenientInt(fields["reminder"]); ok {
		r.Reminder = &v
	}
	if v, ok := fields["lineage"]; ok {
		r.Lineage = v
	}
	if v, ok := lenientString(fields["sourceUrl"]); ok {
		r.SourceURL = v
	}
	return nil
}

// scalar returns the text of a JSON string or number. Null is not a scalar.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

func lenientString(raw json.RawMessage) (string, bool) {
	return scalar(raw)
}

func lenientFloat(raw json.RawMessage) (float64, bool) {
	s, ok := scalar(raw)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func lenientInt(raw json.RawMessage) (int64, bool) {
	s, ok := scalar(raw)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, ok := lenientFloat(raw)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func lenientBool(raw json.RawMessage) (bool, bool) {
	raw = bytes.TrimSpace(raw)
	if string(raw) == "null" {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	s, ok := scalar(raw)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, true
	case "false", "0", "":
		return false, true
	}
	return false, false
}
