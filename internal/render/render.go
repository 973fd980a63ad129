// Package render formats treeward's status/verify/plan results for the
// terminal: plain text, JSON, YAML, and a colorized lipgloss rendering,
// all built over a named formatter registry.
//
// Basic usage:
//
//	formatter, err := render.Get("pretty")
//	if err != nil { ... }
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil { ... }
//	fmt.Print(buf.String())
package render

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/plan"
)

// ChangeView is one change, rendering-ready: Kind is already its string
// form so formatters never need to import pkg/treeward/diff themselves.
type ChangeView struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
}

// DirOutcome is one directory's plan outcome, rendering-ready.
type DirOutcome struct {
	Dir     string `json:"dir" yaml:"dir"`
	Outcome string `json:"outcome" yaml:"outcome"`
}

// Result is the full rendering input for status, verify, init, and update.
// Directories is empty for status/verify (which never write).
type Result struct {
	// Command is "init", "update", "status", or "verify".
	Command string `json:"command" yaml:"command"`
	// Root is the absolute traversal root as resolved from -C; symlinks in
	// it are not resolved.
	Root string `json:"root" yaml:"root"`
	// Policy is the checksum policy name used to compute Changes.
	Policy string `json:"policy" yaml:"policy"`
	// Changes is the sorted change list from the traversal.
	Changes []ChangeView `json:"changes" yaml:"changes"`
	// Fingerprint is the hex SHA-256 over Changes.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	// Directories is the per-directory plan outcome, for init/update only.
	Directories []DirOutcome `json:"directories,omitempty" yaml:"directories,omitempty"`
}

// FromChanges builds a Result for status/verify from a raw change list.
func FromChanges(command, root string, policy diff.Policy, changes []ChangeView, fingerprint string) Result {
	return Result{Command: command, Root: root, Policy: policy.String(), Changes: changes, Fingerprint: fingerprint}
}

// FromPlan builds a Result for init/update from a plan.Result.
func FromPlan(command, root string, policy diff.Policy, changes []ChangeView, planResult plan.Result) Result {
	dirs := make([]DirOutcome, 0, len(planResult.Directories))
	for dir, outcome := range planResult.Directories {
		dirs = append(dirs, DirOutcome{Dir: dir, Outcome: outcome.String()})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Dir < dirs[j].Dir })

	return Result{
		Command:     command,
		Root:        root,
		Policy:      policy.String(),
		Changes:     changes,
		Fingerprint: planResult.Fingerprint,
		Directories: dirs,
	}
}

// Formatter renders a Result into buf.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory constructs a Formatter on demand.
type FormatterFactory func() Formatter

// Registry is a named collection of formatter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces a factory under name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get constructs a new Formatter for name, or fails if none is registered.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
	return factory(), nil
}

// Available returns every registered format name, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global registry the four built-in formatters
// register themselves into via init().
var DefaultRegistry = NewRegistry()

func Register(name string, factory FormatterFactory) { DefaultRegistry.Register(name, factory) }
func Get(name string) (Formatter, error)              { return DefaultRegistry.Get(name) }
func Available() []string                             { return DefaultRegistry.Available() }
