package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

// ListEnvelope is the list response of the assignment service. Older
// endpoints put the items under "cursos" or "profesores" instead of "data".
type ListEnvelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data"`
	Cursos     json.RawMessage `json:"cursos"`
	Profesores json.RawMessage `json:"profesores"`
	Message    string          `json:"message"`
}

// Items returns the first populated item array.
func (e ListEnvelope) Items() json.RawMessage {
	for _, raw := range []json.RawMessage{e.Data, e.Cursos, e.Profesores} {
		if present(raw) {
			return raw
		}
	}
	return nil
}

// ItemEnvelope is the single-object response of the assignment service.
type ItemEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// ErrorBody is what the assignment service returns on failure. Detail is
// either a list of {loc, msg} entries or a plain string.
type ErrorBody struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type detailEntry struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// FieldErrors decodes a structured detail list. Non-list detail yields nil.
func (b ErrorBody) FieldErrors() []appErrors.FieldError {
	raw := bytes.TrimSpace(b.Detail)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var entries []detailEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	out := make([]appErrors.FieldError, 0, len(entries))
	for _, e := range entries {
		loc := make([]string, 0, len(e.Loc))
		for _, part := range e.Loc {
			switch v := part.(type) {
			case string:
				loc = append(loc, v)
			case float64:
				loc = append(loc, fmt.Sprintf("%d", int64(v)))
			default:
				loc = append(loc, fmt.Sprint(v))
			}
		}
		out = append(out, appErrors.FieldError{Loc: loc, Msg: e.Msg})
	}
	return out
}

// Text returns the best human message: string detail, then message, then
// the nested error message.
func (b ErrorBody) Text() string {
	raw := bytes.TrimSpace(b.Detail)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	if b.Message != "" {
		return b.Message
	}
	if b.Error != nil && b.Error.Message != "" {
		return b.Error.Message
	}
	return ""
}

// ErrorCode returns the nested error code when the service sent one.
func (b ErrorBody) ErrorCode() string {
	if b.Error == nil {
		return ""
	}
	return b.Error.Code
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
