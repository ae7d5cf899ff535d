package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"vtodo/internal/service"
)

// storedItem accepts both the current {text, done} shape and the legacy
// {task, completed} shape written by the browser build.
type storedItem struct {
	Text      *string `json:"text"`
	Done      *bool   `json:"done"`
	Task      *string `json:"task"`
	Completed *bool   `json:"completed"`
}

func (s storedItem) item() service.Item {
	var it service.Item
	switch {
	case s.Text != nil:
		it.Text = *s.Text
	case s.Task != nil:
		it.Text = *s.Task
	}
	switch {
	case s.Done != nil:
		it.Done = *s.Done
	case s.Completed != nil:
		it.Done = *s.Completed
	}
	return it
}

// EncodeLists writes lists as one JSON object whose keys keep list order.
func EncodeLists(lists []service.NamedList) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range lists {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(l.Name)
		if err != nil {
			return nil, err
		}
		items := l.Items
		if items == nil {
			items = []service.Item{}
		}
		body, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeLists parses the object written by EncodeLists, preserving key order.
// A repeated key keeps its first position and its last value.
func DecodeLists(data []byte) ([]service.NamedList, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode lists: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("decode lists: expected a JSON object")
	}

	var lists []service.NamedList
	pos := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode lists: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errors.New("decode lists: expected a list name")
		}
		var stored []storedItem
		if err := dec.Decode(&stored); err != nil {
			return nil, fmt.Errorf("decode list %q: %w", name, err)
		}
		items := make([]service.Item, 0, len(stored))
		for _, s := range stored {
			items = append(items, s.item())
		}
		if i, seen := pos[name]; seen {
			lists[i].Items = items
			continue
		}
		pos[name] = len(lists)
		lists = append(lists, service.NamedList{Name: name, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode lists: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode lists: trailing data")
	}
	return lists, nil
}
