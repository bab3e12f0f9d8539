package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for the pipeline package.
var (
	// ErrStageAlreadyRegistered is returned when registering a duplicate stage.
	ErrStageAlreadyRegistered = errors.New("stage already registered")

	// ErrStageNotFound is returned when a stage or a dependency is not found.
	ErrStageNotFound = errors.New("stage not found")

	// ErrDependencyCycle is returned when stage dependencies form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle detected")
)

// Registry holds the page stages and their dependencies.
type Registry struct {
	mu     sync.RWMutex
	stages map[string]Stage
	order  []string // registration order
}

// NewRegistry creates a registry holding stages.
func NewRegistry(stages ...Stage) (*Registry, error) {
	r := &Registry{stages: make(map[string]Stage)}
	for _, s := range stages {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a stage.
func (r *Registry) Register(s Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.stages[name]; exists {
		return fmt.Errorf("%w: %s", ErrStageAlreadyRegistered, name)
	}
	r.stages[name] = s
	r.order = append(r.order, name)
	return nil
}

// Get returns a stage by name.
func (r *Registry) Get(name string) (Stage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stages[name]
	return s, ok
}

// Names returns all stage names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Ordered returns all stages sorted so that every stage comes after its
// dependencies. Independent stages keep registration order.
func (r *Registry) Ordered() ([]Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(r.order)
}

// Upto returns the stages needed to run the named stage, the stage itself
// last, in dependency order.
func (r *Registry) Upto(name string) ([]Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.stages[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrStageNotFound, name)
	}

	needed := map[string]bool{}
	var visit func(string)
	visit = func(n string) {
		if needed[n] {
			return
		}
		needed[n] = true
		if s, ok := r.stages[n]; ok {
			for _, dep := range s.Dependencies() {
				visit(dep)
			}
		}
	}
	visit(name)

	var names []string
	for _, n := range r.order {
		if needed[n] {
			names = append(names, n)
		}
	}
	return r.sorted(names)
}

// sorted orders the named stages with Kahn's algorithm. Dependencies
// outside names are an error.
func (r *Registry) sorted(names []string) ([]Stage, error) {
	inDegree := make(map[string]int, len(names))
	for _, n := range names {
		inDegree[n] = 0
	}
	for _, n := range names {
		for _, dep := range r.stages[n].Dependencies() {
			if _, ok := inDegree[dep]; !ok {
				return nil, fmt.Errorf("%w: stage %q depends on %q", ErrStageNotFound, n, dep)
			}
			inDegree[n]++
		}
	}

	var queue []string
	for _, n := range names {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	ordered := make([]Stage, 0, len(names))
	for len(queue) > 0 {
		done := queue[0]
		queue = queue[1:]
		ordered = append(ordered, r.stages[done])

		for _, n := range names {
			for _, dep := range r.stages[n].Dependencies() {
				if dep != done {
					continue
				}
				inDegree[n]--
				if inDegree[n] == 0 {
					queue = append(queue, n)
				}
			}
		}
	}

	if len(ordered) != len(names) {
		return nil, ErrDependencyCycle
	}
	return ordered, nil
}
