package rules

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Function is a numeric helper callable from rule expressions.
type Function func(args ...float64) (float64, error)

// FunctionRegistry stores custom functions keyed by lower-cased name. Each
// registry, and each clone, has its own identity so compiled programs that
// captured its functions are never served to another registry.
type FunctionRegistry struct {
	mu         sync.RWMutex
	functions  map[string]Function
	id         string
	generation uint64
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("rules: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("rules: function name must not be empty")
	}
	key := strings.ToLower(name)
	if key == "abs" {
		return fmt.Errorf("rules: function %q is built in", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("rules: function %q already registered", name)
	}
	r.functions[key] = fn
	r.generation++
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions:  make(map[string]Function, len(r.functions)),
		generation: r.generation,
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...float64) (float64, error) {
	if r == nil {
		return math.NaN(), fmt.Errorf("rules: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return math.NaN(), fmt.Errorf("rules: function %q not registered", name)
	}
	return fn(args...)
}

// CallAny converts loosely typed arguments before calling name. Engines that
// hand over dynamic values (expr, goja) go through here.
func (r *FunctionRegistry) CallAny(name string, args ...any) (any, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := ToFloat64(arg)
		if err != nil {
			return nil, fmt.Errorf("rules: function %q argument %d: %w", name, i, err)
		}
		values[i] = v
	}
	return r.Call(name, values...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cacheScope identifies the registry contents for program cache keys. It
// changes whenever a function is registered.
func (r *FunctionRegistry) cacheScope() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		r.id = uuid.NewString()
	}
	return fmt.Sprintf("%s@%d", r.id, r.generation)
}
