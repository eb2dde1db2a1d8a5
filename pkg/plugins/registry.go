package plugins

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/frankgh/pxf/pkg/request"
)

// Factory builds a plugin for one request.
type Factory func(desc *request.Descriptor) (IPlugin, error)

type factoryMap map[string]Factory

// Registry maps plugin names, as carried by OPTIONS-ACCESSOR and the like,
// to factories. Lookups read an immutable map; Register publishes a new one.
type Registry struct {
	mtx     sync.Mutex
	current atomic.Pointer[factoryMap]
}

func NewRegistry() *Registry {
	r := &Registry{}
	m := make(factoryMap)
	r.current.Store(&m)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	old := *r.current.Load()
	next := make(factoryMap, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	if _, ok := next[name]; ok {
		glog.Warningf("plugin %s re-registered", name)
	}
	next[name] = f
	r.current.Store(&next)
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := (*r.current.Load())[name]
	return f, ok
}

func (r *Registry) Names() []string {
	m := *r.current.Load()
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// New builds the plugin called name for desc.
func (r *Registry) New(name string, desc *request.Descriptor) (IPlugin, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("plugin %s is not registered", name)
	}
	return f(desc)
}
