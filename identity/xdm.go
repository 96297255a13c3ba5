package identity

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// EncodeXDM encodes the map as XDM JSON, keeping namespace and item order.
// An empty map encodes to {} unless allowEmpty is set.
func (m *Map) EncodeXDM(allowEmpty bool) ([]byte, error) {
	if m.IsEmpty() && !allowEmpty {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString(`{"` + KeyIdentityMap + `":{`)
	for idx, ns := range m.Namespaces() {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ns)
		if err != nil {
			return nil, fmt.Errorf("encode namespace %q: %w", ns, err)
		}
		items, err := json.Marshal(m.items[ns])
		if err != nil {
			return nil, fmt.Errorf("encode items of %q: %w", ns, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(items)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// MarshalJSON encodes the map with EncodeXDM, always including the identityMap key.
func (m *Map) MarshalJSON() ([]byte, error) {
	return m.EncodeXDM(true)
}

// UnmarshalJSON decodes XDM JSON with DecodeXDM.
func (m *Map) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeXDM(data)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// DecodeXDM decodes XDM JSON into a Map, keeping the namespace order of the document.
// It applies the same filtering as MapFromXDM. A document without an identityMap key
// decodes to an empty map; malformed JSON or an identityMap that is not an object is an
// error. Namespace values that are not arrays are skipped.
func DecodeXDM(data []byte) (*Map, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decode xdm: %w", err)
	}

	m := NewMap()
	raw, ok := top[KeyIdentityMap]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return m, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode xdm: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode xdm: %s must be an object", KeyIdentityMap)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode xdm: %w", err)
		}
		ns, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode xdm namespace %q: %w", ns, err)
		}

		var entries []any
		if err := json.Unmarshal(value, &entries); err != nil {
			continue
		}
		m.addParsed(ns, entries)
	}

	return m, nil
}
