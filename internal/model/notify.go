package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// NotifyRequest - POST /notify 요청 본문
type NotifyRequest struct {
	TurnstileToken string   `json:"turnstile_token"`
	Message        string   `json:"message"`
	Subject        string   `json:"subject,omitempty"`
	Metadata       Metadata `json:"metadata,omitempty" swaggertype:"object"`
}

// MetadataEntry - metadata의 key와 가공되지 않은 JSON 값
type MetadataEntry struct {
	Key   string
	Value json.RawMessage
}

// Metadata는 JSON object의 key 순서를 유지한다.
// 같은 key가 여러 번 나오면 첫 위치를 유지하고 마지막 값을 사용한다.
type Metadata []MetadataEntry

var errMetadataNotObject = errors.New("metadata must be a JSON object")

func (m *Metadata) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errMetadataNotObject
	}

	entries := Metadata{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected metadata key %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}

		if i, seen := index[key]; seen {
			entries[i].Value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, MetadataEntry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = entries
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(entry.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(entry.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
