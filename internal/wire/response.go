// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package wire

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Response is what a handler chain produces for one request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse builds an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(http.Header)}
}

// Write serializes resp as an HTTP/1.1 response to a request made with method.
//
// closing adds "Connection: close". Responses to HEAD carry the length of
// the body they would have had, but no body.
func Write(writer io.Writer, resp *Response, method string, closing bool) error {
	header := resp.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	raw := &http.Response{
		StatusCode:    resp.Status,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Request:       &http.Request{Method: method},
		Header:        header,
		ContentLength: int64(len(resp.Body)),
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		Close:         closing,
	}
	if len(resp.Body) == 0 {
		raw.ContentLength = 0
		raw.Body = http.NoBody
	}

	if err := raw.Write(writer); err != nil {
		return fmt.Errorf("wire: write response: %w", err)
	}
	return nil
}
