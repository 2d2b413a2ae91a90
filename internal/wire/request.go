// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package wire turns the bytes of a TCP connection into structured requests
and structured responses back into HTTP/1.1 bytes.

It is the leaf of the dispatch pipeline: nothing here knows about routes,
sessions or policies.
*/
package wire

import (
	"context"
	"net/http"
	"strings"

	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
)

// Request is a parsed inbound request.
type Request struct {
	Method   string
	Path     string
	RawQuery string

	// Header canonicalizes names, so Get is case-insensitive.
	Header http.Header

	// Params merges query string, form body and JSON body, in that precedence order.
	Params map[string]string
	Body   []byte

	RemoteAddr string

	// Close is set when the client asked to close the connection after the response.
	Close bool

	// Captures holds pattern-route captures in positional order; PathParams by name.
	Captures   []string
	PathParams map[string]string

	clientIP string
	ctx      context.Context
}

// Context returns the request context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r carrying ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	clone := *r
	clone.ctx = ctx
	return &clone
}

// Param returns a merged body/query parameter.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// PathParam returns a named route capture.
func (r *Request) PathParam(name string) string {
	return r.PathParams[name]
}

// ClientIP returns the client address: the TCP peer unless
// [Request.ResolveClientIP] accepted a forwarding header from a trusted proxy.
func (r *Request) ClientIP() string {
	if r.clientIP != "" {
		return r.clientIP
	}
	return r.peerIP()
}

// IsJSON reports whether the body is declared as JSON.
func (r *Request) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.Header.Get(constants.HeaderContentType)), "application/json")
}
