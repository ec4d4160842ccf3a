package shell

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jboilerplate/portal/internal/manifest"
)

// NormalizeComponentPath maps an aliased component path ("@/pages/x.vue")
// into the registry key space ("/src/pages/x.vue"). Other paths are returned
// unchanged.
func NormalizeComponentPath(componentPath string) string {
	if strings.HasPrefix(componentPath, manifest.AliasPrefix) {
		return "/src/" + strings.TrimPrefix(componentPath, manifest.AliasPrefix)
	}
	return componentPath
}

// ComponentRegistry is the set of page components compiled into the
// dashboard. Manifest entries can only route to components listed here.
type ComponentRegistry struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewComponentRegistry registers keys, which may be aliased or normalized.
func NewComponentRegistry(keys ...string) *ComponentRegistry {
	r := &ComponentRegistry{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		r.Register(k)
	}
	return r
}

func (r *ComponentRegistry) Register(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[NormalizeComponentPath(key)] = struct{}{}
}

// Lookup returns the normalized key when componentPath is registered.
func (r *ComponentRegistry) Lookup(componentPath string) (string, bool) {
	key := NormalizeComponentPath(componentPath)
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.keys[key]
	return key, ok
}

func (r *ComponentRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.keys))
	for k := range r.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *ComponentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// ScanComponents registers every .vue file under <root>/src/pages.
func ScanComponents(root string) (*ComponentRegistry, error) {
	r := NewComponentRegistry()
	pages := filepath.Join(root, "src", "pages")
	err := filepath.WalkDir(pages, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".vue" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		r.Register("/" + filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultComponents lists the pages the static routes render.
func DefaultComponents() *ComponentRegistry {
	return NewComponentRegistry(
		"@/pages/login.vue",
		"@/pages/setup.vue",
		"@/pages/get-started.vue",
		"@/pages/not-found.vue",
		"@/pages/notifications/index.vue",
		"@/pages/admin/dashboard/index.vue",
		"@/pages/admin/page-editor/index.vue",
		"@/pages/admin/menu-editor/index.vue",
		"@/pages/admin/system-status/index.vue",
		"@/pages/user/home/index.vue",
	)
}
