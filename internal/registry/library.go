package registry

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
)

// Library is a named bundle of pass modules.
type Library struct {
	Name        string
	Description string
	Modules     []Module
}

// platformSuffixes are stripped from library names, so "GBuffer.dll",
// "libGBuffer.so" and "GBuffer" all name the same catalog entry.
var platformSuffixes = []string{".dll", ".so", ".dylib"}

// LibraryKey normalizes a library identifier as written in a graph
// description into its catalog key.
func LibraryKey(name string) string {
	key := filepath.Base(strings.TrimSpace(name))
	for _, suffix := range platformSuffixes {
		if strings.HasSuffix(strings.ToLower(key), suffix) {
			key = key[:len(key)-len(suffix)]
			if suffix == ".so" || suffix == ".dylib" {
				key = strings.TrimPrefix(key, "lib")
			}
			break
		}
	}
	return key
}

// AddLibrary makes a library available for loading. Adding a library whose
// key is already in the catalog replaces it, unless it was already loaded.
func (r *Registry) AddLibrary(lib Library) {
	key := LibraryKey(lib.Name)
	if _, loaded := r.loaded[key]; loaded {
		return
	}
	r.catalog[key] = lib
}

// LoadLibrary registers every pass type of the named library. Loading an
// already loaded library is a no-op. Unknown names fail with
// PassLibraryNotFound.
func (r *Registry) LoadLibrary(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)
	key := LibraryKey(name)

	if _, loaded := r.loaded[key]; loaded {
		logger.Debug("Pass library already loaded.", "library", key)
		return nil
	}

	lib, ok := r.catalog[key]
	if !ok {
		return errdefs.New(errdefs.ErrPassLibraryNotFound, "available: %s", strings.Join(r.Libraries(), ", ")).WithRef(name)
	}

	r.loading = key
	defer func() { r.loading = "" }()
	for _, m := range lib.Modules {
		m.Register(r)
	}
	r.loaded[key] = struct{}{}

	logger.Debug("Pass library loaded.", "library", key, "modules", len(lib.Modules))
	return nil
}

// Libraries returns the catalog keys in lexical order.
func (r *Registry) Libraries() []string {
	out := make([]string, 0, len(r.catalog))
	for key := range r.catalog {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Loaded reports whether the named library has been loaded.
func (r *Registry) Loaded(name string) bool {
	_, ok := r.loaded[LibraryKey(name)]
	return ok
}
