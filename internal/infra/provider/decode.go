package provider

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"whatsapp-gateway-client/internal/domain/entities"
)

// fields is a JSON object read without a schema. Accessors never fail: an
// absent or mistyped member yields the zero value of the requested type.
type fields map[string]json.RawMessage

func decodeFields(raw []byte) fields {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return fields{}
	}
	return f
}

func (f fields) String(name string) string {
	raw, ok := f[name]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			return compact.String()
		}
	}
	return string(trimmed)
}

// Bool reads true/false as is, a number as true when non-zero and a string
// through strconv.ParseBool.
func (f fields) Bool(name string) bool {
	switch v := f.value(name).(type) {
	case bool:
		return v
	case json.Number:
		fl, err := v.Float64()
		return err == nil && fl != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}
	return false
}

func (f fields) Int(name string) int {
	n, ok := f.number(name)
	if !ok {
		return 0
	}
	if i, err := strconv.ParseInt(n.String(), 10, 0); err == nil {
		return int(i)
	}
	if fl, err := n.Float64(); err == nil && fl > math.MinInt64 && fl < math.MaxInt64 {
		return int(fl)
	}
	return 0
}

func (f fields) Uint(name string) uint64 {
	n, ok := f.number(name)
	if !ok {
		return 0
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return u
	}
	if fl, err := n.Float64(); err == nil && fl >= 0 && fl < math.MaxUint64 {
		return uint64(fl)
	}
	return 0
}

// number accepts a JSON number or a string holding one, so "4" and 4 read the
// same.
func (f fields) number(name string) (json.Number, bool) {
	switch v := f.value(name).(type) {
	case json.Number:
		return v, true
	case string:
		var n json.Number
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &n); err != nil {
			return "", false
		}
		return n, true
	}
	return "", false
}

func (f fields) value(name string) interface{} {
	raw, ok := f[name]
	if !ok {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func decodeMessage(raw json.RawMessage) entities.Message {
	f := decodeFields(raw)
	return entities.Message{
		ID:        f.String("id"),
		From:      f.String("from"),
		Text:      f.String("text"),
		Timestamp: f.Uint("time"),
	}
}
