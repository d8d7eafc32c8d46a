package transport

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	NameCurl   = "curl"
	NameNative = "native"
)

// Constructor builds an Executor from options.
type Constructor func(opts Options) (Executor, error)

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{
		NameCurl:   func(opts Options) (Executor, error) { return NewCurl(opts) },
		NameNative: func(opts Options) (Executor, error) { return NewNative(opts) },
	}
)

// Register adds a named executor constructor. Names are lower-cased and an
// existing registration is replaced.
func Register(name string, ctor Constructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the executor named by opts.Name, defaulting to curl.
func New(opts Options) (Executor, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Name))
	if name == "" {
		name = NameCurl
	}

	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q: available transports=%v", ErrUnknownTransport, name, Names())
	}

	exec, err := ctor(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to construct transport %q: %w", name, err)
	}
	return exec, nil
}

// Names returns the registered executor names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
