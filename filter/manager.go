package filter

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/s0up4200/openstates/collection"
)

// Manager holds named filters, typically the presets from the config file,
// and applies them to API responses
type Manager struct {
	compiler  Compiler
	evaluator Evaluator
	filters   map[string]CompiledFilter
	mu        sync.RWMutex
	stop      func(context.Context) error
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *ConcurrentEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
		m.stop = evaluator.Stop
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewExprCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.evaluator == nil {
		evaluator := NewConcurrentEvaluator()
		m.evaluator = evaluator
		m.stop = evaluator.Stop
	}

	return m
}

// RegisterFilter registers a new filter or updates an existing one
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compile(name, expression)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers multiple filters at once. Nothing is registered
// unless every expression compiles.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for _, name := range slices.Sorted(maps.Keys(filters)) {
		filter, err := m.compile(name, filters[name])
		if err != nil {
			return err
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// SelectNamed applies a registered filter to the records of data
func (m *Manager) SelectNamed(ctx context.Context, name string, data *collection.Collection) (*collection.Collection, error) {
	filter, exists := m.GetFilter(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFilterNotFound, name)
	}

	return Select(ctx, m.evaluator, filter, data)
}

// SelectExpression compiles expression and applies it to the records of data
func (m *Manager) SelectExpression(ctx context.Context, expression string, data *collection.Collection) (*collection.Collection, error) {
	filter, err := m.compile("", expression)
	if err != nil {
		return nil, err
	}

	return Select(ctx, m.evaluator, filter, data)
}

// Close gracefully shuts down the manager
func (m *Manager) Close(ctx context.Context) error {
	if m.stop == nil {
		return nil
	}
	return m.stop(ctx)
}

func (m *Manager) compile(name, expression string) (CompiledFilter, error) {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		var compErr *CompilationError
		if name != "" && errors.As(err, &compErr) {
			named := *compErr
			named.Name = name
			return nil, &named
		}
		return nil, err
	}
	return filter, nil
}
