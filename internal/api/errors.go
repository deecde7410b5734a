package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// RowError lists the field errors the server reported for one spreadsheet row.
type RowError struct {
	Row    int               `json:"row"`
	Errors map[string]string `json:"errors"`
}

// APIError is a non-success response. Fields carries per-field validation
// messages for single-record writes; Rows carries per-row messages for
// spreadsheet uploads.
type APIError struct {
	Op      string
	Status  int
	Message string
	Fields  map[string][]string
	Rows    []RowError
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s status %d", e.Op, e.Status)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, strings.Join(e.Fields[k], ", "))
		}
	}
	if len(e.Rows) > 0 {
		fmt.Fprintf(&b, "; %d row(s) rejected", len(e.Rows))
	}
	return b.String()
}

const maxErrorBody = 64 << 10

func decodeAPIError(op string, res *http.Response) *APIError {
	e := &APIError{Op: op, Status: res.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if len(raw) == 0 {
		e.Message = http.StatusText(res.StatusCode)
		return e
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		return e
	}
	for key, v := range body {
		switch key {
		case "error", "detail", "message":
			var s string
			if json.Unmarshal(v, &s) == nil && e.Message == "" {
				e.Message = s
			}
		case "errors":
			var rows []RowError
			if json.Unmarshal(v, &rows) == nil {
				e.Rows = rows
			}
		default:
			if msgs := fieldMessages(v); len(msgs) > 0 {
				if e.Fields == nil {
					e.Fields = map[string][]string{}
				}
				e.Fields[key] = msgs
			}
		}
	}
	if e.Message == "" && e.Fields == nil && e.Rows == nil {
		e.Message = http.StatusText(res.StatusCode)
	}
	return e
}

// fieldMessages accepts either a list of strings or a single string.
func fieldMessages(v json.RawMessage) []string {
	var list []string
	if json.Unmarshal(v, &list) == nil {
		return list
	}
	var one string
	if json.Unmarshal(v, &one) == nil && one != "" {
		return []string{one}
	}
	return nil
}
