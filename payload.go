package destiin

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload is a decoded JSON request body. Numbers are kept as json.Number.
type Payload map[string]any

// metaKeys are document fields a client may send but never sets.
var metaKeys = map[string]bool{
	"doctype":  true,
	"name":     true,
	"creation": true,
	"modified": true,
}

// String returns the value of key rendered as text, and whether the key was present.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return stringValue(v), true
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// assign copies every payload key either into a known field or into extra.
// Meta keys are skipped.
func (p Payload) assign(fields map[string]*string, extra map[string]any) {
	for key, value := range p {
		if metaKeys[key] {
			continue
		}
		if field, ok := fields[key]; ok {
			*field = stringValue(value)
			continue
		}
		extra[key] = value
	}
}
