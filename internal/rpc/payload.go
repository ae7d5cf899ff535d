package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode marks payloads that cannot be parsed or miss required fields.
var ErrDecode = errors.New("decode error")

func decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// validator checks required fields after unmarshalling.
type validator interface {
	validate() error
}

// decode parses payload into v. An empty payload is accepted only when
// optional is true, leaving v at its zero value.
func decode(payload string, v validator, optional bool) error {
	if strings.TrimSpace(payload) == "" {
		if optional {
			return nil
		}
		return decodeErr("empty payload")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return decodeErr("%v", err)
	}
	return v.validate()
}

type listPayload struct {
	ListName string `json:"listName"`
}

func (p *listPayload) validate() error { return nil }

type addTodoPayload struct {
	Task     *string `json:"task"`
	ListName string  `json:"listName"`
}

func (p *addTodoPayload) validate() error {
	if p.Task == nil {
		return decodeErr("missing field: task")
	}
	return nil
}

type indexPayload struct {
	Index    *int   `json:"index"`
	ListName string `json:"listName"`
}

func (p *indexPayload) validate() error {
	if p.Index == nil {
		return decodeErr("missing field: index")
	}
	return nil
}

type movePayload struct {
	FromIndex *int   `json:"fromIndex"`
	ToIndex   *int   `json:"toIndex"`
	ListName  string `json:"listName"`
}

func (p *movePayload) validate() error {
	if p.FromIndex == nil {
		return decodeErr("missing field: fromIndex")
	}
	if p.ToIndex == nil {
		return decodeErr("missing field: toIndex")
	}
	return nil
}

type namePayload struct {
	ListName *string `json:"listName"`
}

func (p *namePayload) validate() error {
	if p.ListName == nil {
		return decodeErr("missing field: listName")
	}
	return nil
}

// Failure is the result of any call that was not applied.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Failure codes.
const (
	CodeDecode          = "decode_error"
	CodeNotFound        = "not_found"
	CodeOutOfRange      = "out_of_range"
	CodeProtected       = "protected"
	CodeInvalidArgument = "invalid_argument"
	CodeInternal        = "internal"
)

// CreateListResult answers createList.
type CreateListResult struct {
	Success  bool   `json:"success"`
	ListName string `json:"listName"`
	Created  bool   `json:"created"`
}

// SwitchListResult answers switchList.
type SwitchListResult struct {
	Success  bool   `json:"success"`
	ListName string `json:"listName"`
}

// DeleteListResult answers deleteList.
type DeleteListResult struct {
	Success bool `json:"success"`
}
