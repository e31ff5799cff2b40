package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one raw record exactly as the service returned it. Numbers are kept
// as json.Number.
type Row map[string]any

// Page is a decoded success envelope.
type Page struct {
	// Total is the declared list_total_count. Only meaningful when HasTotal.
	Total    int
	HasTotal bool
	Rows     []Row
}

type resultBody struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type headBlock struct {
	Head []json.RawMessage `json:"head"`
}

type rowBlock struct {
	Row []Row `json:"row"`
}

// Decode parses one 200 response body for service.
//
// A body keyed by the service name is a success envelope of the form
// [{"head": [{"list_total_count": n}, ...]}, {"row": [...]}].
// A body keyed by RESULT is an error envelope; INFO-200 maps to ErrNotFound
// and every other code to *InternalServiceError.
func Decode(service Service, body []byte) (*Page, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	if raw, ok := top[string(service)]; ok {
		return decodeSuccess(raw)
	}

	if raw, ok := top["RESULT"]; ok {
		var result resultBody
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("%w: RESULT: %v", ErrMalformedEnvelope, err)
		}
		if result.Code == CodeNoData {
			return nil, ErrNotFound
		}
		return nil, &InternalServiceError{Code: result.Code, Message: result.Message}
	}

	return nil, fmt.Errorf("%w: neither %q nor RESULT present", ErrMalformedEnvelope, service)
}

func decodeSuccess(raw json.RawMessage) (*Page, error) {
	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(blocks) < 2 {
		return nil, fmt.Errorf("%w: expected [head, body], got %d blocks", ErrMalformedEnvelope, len(blocks))
	}

	page := &Page{}

	var head headBlock
	if err := json.Unmarshal(blocks[0], &head); err != nil {
		return nil, fmt.Errorf("%w: head: %v", ErrMalformedEnvelope, err)
	}
	for _, item := range head.Head {
		var count struct {
			Total *int `json:"list_total_count"`
		}
		if err := json.Unmarshal(item, &count); err != nil {
			continue
		}
		if count.Total != nil {
			page.Total = *count.Total
			page.HasTotal = true
			break
		}
	}

	dec := json.NewDecoder(bytes.NewReader(blocks[1]))
	dec.UseNumber()
	var rows rowBlock
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: row: %v", ErrMalformedEnvelope, err)
	}
	page.Rows = rows.Row

	return page, nil
}

// peek reports whether body is a success envelope for service and, for
// error envelopes, the RESULT code. Undecodable bodies yield (false, "").
func peek(service Service, body []byte) (success bool, code string) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return false, ""
	}
	if _, ok := top[string(service)]; ok {
		return true, ""
	}
	raw, ok := top["RESULT"]
	if !ok {
		return false, ""
	}
	var result resultBody
	if err := json.Unmarshal(raw, &result); err != nil {
		return false, ""
	}
	return false, result.Code
}
