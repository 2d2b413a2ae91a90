// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package wire

// Handler serves one request.
//
// Returning an error instead of a response lets the pipeline map it to the
// right status in one place.
type Handler interface {
	Serve(request *Request) (*Response, error)
}

// HandlerFunc adapts an ordinary function to [Handler].
type HandlerFunc func(request *Request) (*Response, error)

// Serve calls f(request).
func (f HandlerFunc) Serve(request *Request) (*Response, error) {
	return f(request)
}
