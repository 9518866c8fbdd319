package overlay

import (
	"bytes"
	"encoding/json"
	"strings"
)

type valueKind int

const (
	kindUnsupported valueKind = iota
	kindText
	kindList
)

// Value is one submitted field value: a string, an ordered list of strings,
// or anything else (which renders nothing).
type Value struct {
	kind  valueKind
	text  string
	lines []string
}

// Text builds a string value.
func Text(s string) Value { return Value{kind: kindText, text: s} }

// List builds a multi-line block value.
func List(lines ...string) Value { return Value{kind: kindList, lines: lines} }

// IsText reports whether v holds a single string.
func (v Value) IsText() bool { return v.kind == kindText }

// String returns the text of v; list values are joined with line breaks.
func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindList:
		return strings.Join(v.lines, "\n")
	}
	return ""
}

// Lines splits v into drawable lines. Empty and unsupported values have no
// lines.
func (v Value) Lines() []string {
	s := v.String()
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

// UnmarshalJSON accepts strings, arrays of strings, numbers and booleans.
// Numbers and booleans keep their literal text. Other shapes decode without
// error into an unsupported value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		lines := make([]string, 0, len(raw))
		for _, item := range raw {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				*v = Value{}
				return nil
			}
			lines = append(lines, s)
		}
		*v = List(lines...)
	case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*v = Text(string(data))
	default:
		*v = Value{}
	}
	return nil
}

// MarshalJSON writes the value back in the shape it was submitted.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindText:
		return json.Marshal(v.text)
	case kindList:
		return json.Marshal(v.lines)
	}
	return []byte("null"), nil
}

// Values maps field names to submitted values.
type Values map[string]Value

// Clone returns a shallow copy safe to add entries to.
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// UnmarshalJSON drops null entries so they count as absent.
func (vs *Values) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for name, msg := range raw {
		if string(bytes.TrimSpace(msg)) == "null" {
			continue
		}
		var v Value
		if err := v.UnmarshalJSON(msg); err != nil {
			return err
		}
		out[name] = v
	}
	*vs = out
	return nil
}
