// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package router holds the exact-match and pattern-match route tables.

Exact paths live in a map and are checked first. Pattern paths use chi
syntax ("/users/{id:[0-9]+}") and are resolved through chi's radix tree,
which extracts the captures. Two patterns that differ only by parameter
names are rejected at registration, so which entry wins never depends on
registration order.

Tables are written at startup and only read afterwards; Register must not
be called once the server is serving.
*/
package router

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zlovtnik/iead-sub004/internal/wire"
)

var (
	// ErrInvalidPath is returned for paths that do not start with "/".
	ErrInvalidPath = errors.New("router: path must start with /")

	// ErrNoMethods is returned when a route declares no handler at all.
	ErrNoMethods = errors.New("router: route declares no methods")

	// ErrAmbiguousPattern is returned when a pattern has the same shape as a
	// different, already registered pattern.
	ErrAmbiguousPattern = errors.New("router: ambiguous pattern")
)

// paramName matches the name part of a chi parameter: "{id" in "{id:[0-9]+}".
var paramName = regexp.MustCompile(`\{[^}:]*`)

// Methods maps an HTTP method to its handler.
type Methods map[string]wire.Handler

// Kind classifies a match result.
type Kind int

const (
	NotFound Kind = iota
	Found
	MethodNotAllowed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case MethodNotAllowed:
		return "method_not_allowed"
	default:
		return "not_found"
	}
}

// Result is the outcome of [Router.Match].
type Result struct {
	Kind    Kind
	Handler wire.Handler

	// Pattern is the registered path spec that matched.
	Pattern string

	// Captures are the pattern captures in positional order; Params by name.
	Captures []string
	Params   map[string]string

	// Allowed is the sorted method set of the matched path (MethodNotAllowed only).
	Allowed []string
}

type route struct {
	path    string
	methods Methods
}

// allowed lists exactly the registered methods. The HEAD fallback to GET is
// a dispatch convenience and is not advertised.
func (r *route) allowed() []string {
	methods := make([]string, 0, len(r.methods))
	for method := range r.methods {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

func (r *route) handler(method string) (wire.Handler, bool) {
	if handler, ok := r.methods[method]; ok {
		return handler, true
	}
	if method == http.MethodHead {
		handler, ok := r.methods[http.MethodGet]
		return handler, ok
	}
	return nil, false
}

// Router is the route table.
type Router struct {
	exact    map[string]*route
	patterns map[string]*route
	shapes   map[string]string
	order    []string
	tree     *chi.Mux
}

// New returns an empty router.
func New() *Router {
	return &Router{
		exact:    make(map[string]*route),
		patterns: make(map[string]*route),
		shapes:   make(map[string]string),
		tree:     chi.NewRouter(),
	}
}

// IsPattern reports whether path is a pattern spec rather than a literal.
func IsPattern(path string) bool {
	return strings.ContainsAny(path, "{*")
}

// Register adds or overwrites the entry for path.
//
// Exact paths overwrite by string; patterns overwrite by identical pattern
// string. A different pattern with the same shape is [ErrAmbiguousPattern].
func (r *Router) Register(path string, methods Methods) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if len(methods) == 0 {
		return fmt.Errorf("%w: %q", ErrNoMethods, path)
	}

	entry := &route{path: path, methods: make(Methods, len(methods))}
	for method, handler := range methods {
		if handler == nil {
			return fmt.Errorf("router: nil handler for %s %s", method, path)
		}
		entry.methods[strings.ToUpper(method)] = handler
	}

	if !IsPattern(path) {
		if _, exists := r.exact[path]; !exists {
			r.order = append(r.order, path)
		}
		r.exact[path] = entry
		return nil
	}

	shape := paramName.ReplaceAllString(path, "{")
	if existing, ok := r.shapes[shape]; ok && existing != path {
		return fmt.Errorf("%w: %q overlaps %q", ErrAmbiguousPattern, path, existing)
	}

	if _, exists := r.patterns[path]; !exists {
		if err := r.addToTree(path); err != nil {
			return err
		}
		r.order = append(r.order, path)
	}
	r.shapes[shape] = path
	r.patterns[path] = entry
	return nil
}

// addToTree inserts path into the chi tree for every method; our own
// method table decides 405 vs found afterwards.
func (r *Router) addToTree(path string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("router: invalid pattern %q: %v", path, recovered)
		}
	}()
	r.tree.Handle(path, http.NotFoundHandler())
	return nil
}

// MustRegister is [Router.Register] for startup wiring; it panics on error.
func (r *Router) MustRegister(path string, methods Methods) {
	if err := r.Register(path, methods); err != nil {
		panic(err)
	}
}

// Match resolves path and method against the tables.
func (r *Router) Match(path, method string) Result {
	if entry, ok := r.exact[path]; ok {
		return resolve(entry, method, nil, nil)
	}

	if len(r.patterns) == 0 {
		return Result{Kind: NotFound}
	}

	routeContext := chi.NewRouteContext()
	if !r.tree.Match(routeContext, http.MethodGet, path) || len(routeContext.RoutePatterns) == 0 {
		return Result{Kind: NotFound}
	}

	pattern := routeContext.RoutePatterns[len(routeContext.RoutePatterns)-1]
	entry, ok := r.patterns[pattern]
	if !ok {
		return Result{Kind: NotFound}
	}

	keys := routeContext.URLParams.Keys
	values := routeContext.URLParams.Values
	captures := make([]string, 0, len(values))
	params := make(map[string]string, len(keys))
	for i, key := range keys {
		if i >= len(values) {
			break
		}
		captures = append(captures, values[i])
		params[key] = values[i]
	}

	return resolve(entry, method, captures, params)
}

func resolve(entry *route, method string, captures []string, params map[string]string) Result {
	handler, ok := entry.handler(method)
	if !ok {
		return Result{Kind: MethodNotAllowed, Pattern: entry.path, Allowed: entry.allowed()}
	}
	return Result{
		Kind:     Found,
		Handler:  handler,
		Pattern:  entry.path,
		Captures: captures,
		Params:   params,
	}
}

// RouteInfo describes one registration for startup logging.
type RouteInfo struct {
	Path    string
	Pattern bool
	Methods []string
}

// Routes lists registrations in registration order.
func (r *Router) Routes() []RouteInfo {
	infos := make([]RouteInfo, 0, len(r.order))
	for _, path := range r.order {
		entry, pattern := r.exact[path], false
		if entry == nil {
			entry, pattern = r.patterns[path], true
		}
		infos = append(infos, RouteInfo{Path: path, Pattern: pattern, Methods: entry.allowed()})
	}
	return infos
}
