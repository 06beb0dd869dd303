package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KeyValue is one named component of a row key.
type KeyValue struct {
	Name  string
	Value string
}

// RowKey is the ordered tuple of key-field values identifying a row. It
// renders as an ordered JSON object, e.g. {"k1":"key3","k2":"key4"}.
type RowKey []KeyValue

func (k RowKey) String() string {
	b, _ := k.MarshalJSON()
	return string(b)
}

func (k RowKey) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range k {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(kv.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (k *RowKey) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row key: expected object, got %v", tok)
	}
	out := RowKey{}
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := nameTok.(string)
		if !ok {
			return fmt.Errorf("row key: non-string key %v", nameTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		val, ok := valTok.(string)
		if !ok {
			// numbers and bools were formatted on write; keep a textual form
			val = fmt.Sprintf("%v", valTok)
		}
		out = append(out, KeyValue{Name: name, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*k = out
	return nil
}

// Result is the single structured value an engine returns for a Plan. It
// mirrors the plan's shape: one count, one denominator, and one key list per
// planned path.
type Result struct {
	Counts map[string]int64
	Denoms map[string]int64
	Keys   map[string][]RowKey
}

func NewResult() *Result {
	return &Result{
		Counts: make(map[string]int64),
		Denoms: make(map[string]int64),
		Keys:   make(map[string][]RowKey),
	}
}
