package sync

import "sort"

// StaticRegistry is the Registry implementation built once at startup from
// configuration and passed by reference to the dispatcher.
type StaticRegistry struct {
	adapters map[string]Adapter
}

func NewStaticRegistry(adapters ...Adapter) *StaticRegistry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &StaticRegistry{adapters: m}
}

func (r *StaticRegistry) Get(service string) (Adapter, bool) {
	a, ok := r.adapters[service]
	return a, ok
}

func (r *StaticRegistry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
