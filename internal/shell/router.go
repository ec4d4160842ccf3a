package shell

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/jboilerplate/portal/internal/manifest"
)

var ErrDuplicateRouteName = errors.New("route name already registered")

// Route is one router record. Records with Redirect render nothing and send
// the navigation elsewhere.
type Route struct {
	Path      string        `json:"path"`
	Name      string        `json:"name,omitempty"`
	Component string        `json:"component,omitempty"`
	Redirect  string        `json:"redirect,omitempty"`
	Meta      manifest.Meta `json:"meta"`
}

// Location is a resolved navigation target.
type Location struct {
	Path     string            `json:"path"`
	FullPath string            `json:"fullPath"`
	Name     string            `json:"name,omitempty"`
	Query    url.Values        `json:"query,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Meta     manifest.Meta     `json:"meta"`
	Matched  *Route            `json:"-"`
}

// Router holds route records in registration order. Names are unique;
// paths are not, and the first registered match wins. Catch-all records
// are only tried after every other record.
type Router struct {
	mu     sync.RWMutex
	routes []Route
	names  map[string]int
}

func NewRouter(routes ...Route) *Router {
	r := &Router{names: make(map[string]int)}
	for _, rt := range routes {
		if err := r.AddRoute(rt); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Router) AddRoute(rt Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt.Name != "" {
		if _, ok := r.names[rt.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRouteName, rt.Name)
		}
		r.names[rt.Name] = len(r.routes)
	}
	r.routes = append(r.routes, rt)
	return nil
}

func (r *Router) HasRoute(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Routes returns a copy of every record in registration order.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Route(nil), r.routes...)
}

// Resolve matches fullPath ("/a/b?x=1") against the records. ok is false
// when nothing matches; the Location still carries the parsed path and query.
func (r *Router) Resolve(fullPath string) (Location, bool) {
	loc := parseLocation(fullPath)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for pass := 0; pass < 2; pass++ {
		for i := range r.routes {
			rt := &r.routes[i]
			if isCatchAll(rt.Path) != (pass == 1) {
				continue
			}
			params, ok := matchPath(rt.Path, loc.Path)
			if !ok {
				continue
			}
			matched := *rt
			loc.Name = rt.Name
			loc.Meta = rt.Meta
			loc.Params = params
			loc.Matched = &matched
			return loc, true
		}
	}
	return loc, false
}

func parseLocation(fullPath string) Location {
	if fullPath == "" {
		fullPath = "/"
	}
	u, err := url.Parse(fullPath)
	if err != nil || u.Path == "" {
		return Location{Path: "/", FullPath: fullPath}
	}
	loc := Location{Path: u.Path, FullPath: u.Path}
	if u.RawQuery != "" {
		loc.Query = u.Query()
		loc.FullPath += "?" + u.RawQuery
	}
	return loc
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func isCatchAll(pattern string) bool {
	segs := splitPath(pattern)
	return len(segs) > 0 && isRestParam(segs[len(segs)-1])
}

func isRestParam(seg string) bool {
	return strings.HasPrefix(seg, ":") && strings.HasSuffix(seg, "*")
}

func paramName(seg string) string {
	name := strings.TrimPrefix(seg, ":")
	if i := strings.IndexAny(name, "(*?"); i >= 0 {
		name = name[:i]
	}
	return name
}

// matchPath supports static segments, ":name" segments and a trailing
// ":name(.*)*" rest segment.
func matchPath(pattern, path string) (map[string]string, bool) {
	ps := splitPath(pattern)
	segs := splitPath(path)
	var params map[string]string

	for i, p := range ps {
		if isRestParam(p) {
			if params == nil {
				params = make(map[string]string)
			}
			params[paramName(p)] = strings.Join(segs[min(i, len(segs)):], "/")
			return params, true
		}
		if i >= len(segs) {
			return nil, false
		}
		if strings.HasPrefix(p, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[paramName(p)] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	if len(ps) != len(segs) {
		return nil, false
	}
	return params, true
}
