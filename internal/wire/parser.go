// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MalformedRequestError reports a request line, header block or body that
// could not be parsed. The connection must be closed after it.
type MalformedRequestError struct {
	Reason string
	Err    error
}

func (e *MalformedRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wire: malformed request: %s: %v", e.Reason, e.Err)
	}
	return "wire: malformed request: " + e.Reason
}

func (e *MalformedRequestError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is a [*MalformedRequestError].
func IsMalformed(err error) bool {
	var malformed *MalformedRequestError
	return errors.As(err, &malformed)
}

// Parse reads one request from reader.
//
// It returns io.EOF untouched when the peer closed the connection before
// sending anything, so keep-alive loops can end quietly. Every other failure
// is a [*MalformedRequestError].
func Parse(reader *bufio.Reader, remoteAddr string, maxBody int64) (*Request, error) {
	raw, err := http.ReadRequest(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &MalformedRequestError{Reason: "request line or headers", Err: err}
	}

	body, err := readBody(raw.Body, maxBody)
	if err != nil {
		return nil, err
	}

	request := &Request{
		Method:     raw.Method,
		Path:       raw.URL.Path,
		RawQuery:   raw.URL.RawQuery,
		Header:     raw.Header,
		Body:       body,
		RemoteAddr: remoteAddr,
		Close:      raw.Close,
	}
	if request.Path == "" {
		request.Path = "/"
	}

	request.Params = mergeParams(request)
	return request, nil
}

// readBody drains the body with a hard cap of maxBody bytes.
func readBody(body io.ReadCloser, maxBody int64) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxBody+1))
	if err != nil {
		return nil, &MalformedRequestError{Reason: "body", Err: err}
	}
	if int64(len(data)) > maxBody {
		return nil, &MalformedRequestError{Reason: fmt.Sprintf("body exceeds %d bytes", maxBody)}
	}
	return data, nil
}

// mergeParams layers query, form body and JSON body parameters.
//
// Later sources override earlier ones only for keys they contain. A body is
// JSON only when the content type says so; otherwise it is form-encoded.
func mergeParams(request *Request) map[string]string {
	params := make(map[string]string)

	if query, err := url.ParseQuery(request.RawQuery); err == nil {
		overlay(params, query)
	}

	if len(request.Body) == 0 {
		return params
	}

	if request.IsJSON() {
		for key, value := range decodeJSONObject(request.Body) {
			params[key] = value
		}
		return params
	}

	if form, err := url.ParseQuery(string(request.Body)); err == nil {
		overlay(params, form)
	}

	return params
}

func overlay(params map[string]string, values url.Values) {
	for key, list := range values {
		if len(list) > 0 {
			params[key] = list[0]
		}
	}
}

// decodeJSONObject flattens a JSON object into string parameters.
//
// A body that is not a JSON object yields an empty set: the content type may
// be a false positive from a misbehaving client.
func decodeJSONObject(body []byte) map[string]string {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return nil
	}

	params := make(map[string]string, len(object))
	for key, raw := range object {
		raw = bytes.TrimSpace(raw)

		var text string
		if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &text) == nil {
			params[key] = text
			continue
		}
		if string(raw) == "null" {
			params[key] = ""
			continue
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			continue
		}
		params[key] = strings.TrimSpace(compact.String())
	}
	return params
}
