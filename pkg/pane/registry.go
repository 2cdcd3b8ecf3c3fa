package pane

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fundiary/fundiary/pkg/types"
)

// Registry is the catalog of pane types available to a process. It holds
// no persisted state; build one at startup and pass it to consumers.
// Registry is safe for concurrent use.
type Registry struct {
	mu               sync.RWMutex
	types            map[string]Descriptor
	order            []string
	logger           zerolog.Logger
	rejectDuplicates bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used to report overwritten registrations.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// WithRejectDuplicates makes Register fail with ErrDuplicatePane instead of
// overwriting an existing identifier.
func WithRejectDuplicates() RegistryOption {
	return func(r *Registry) { r.rejectDuplicates = true }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		types:  make(map[string]Descriptor),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultRegistry creates a registry holding the built-in pane types.
func NewDefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	for _, d := range Builtins() {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("pane: built-in type: %v", err))
		}
	}
	return r
}

// Register checks d and adds it to the catalog. An existing identifier is
// overwritten in place unless the registry rejects duplicates. A failed
// registration leaves the catalog unchanged.
func (r *Registry) Register(d Descriptor) error {
	if err := check(d); err != nil {
		return err
	}
	d = d.clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[d.Identifier]; exists {
		if r.rejectDuplicates {
			return fmt.Errorf("register pane %s: %w", d.Identifier, types.ErrDuplicatePane)
		}
		r.logger.Warn().Str("pane", d.Identifier).Msg("overwriting registered pane type")
	} else {
		r.order = append(r.order, d.Identifier)
	}
	r.types[d.Identifier] = d
	return nil
}

// Unregister removes a type and reports whether it was present.
func (r *Registry) Unregister(identifier string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[identifier]; !ok {
		return false
	}
	delete(r.types, identifier)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == identifier })
	return true
}

// Get returns a copy of the descriptor registered under identifier.
func (r *Registry) Get(identifier string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.types[identifier]
	if !ok {
		return Descriptor{}, false
	}
	return d.clone(), true
}

// List returns copies of all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.types[id].clone())
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Validate checks a pane instance against its type. It is meant to run
// when a document is persisted or loaded, not on every edit. Data is
// compared in its JSON form, so Go integers satisfy number fields.
func (r *Registry) Validate(inst types.PaneInstance) error {
	fail := func(reason string, err error) error {
		return &types.ValidationError{Reason: fmt.Sprintf("pane %s: %s", inst.ID, reason), Err: err}
	}
	if inst.ID == "" {
		return fail("empty id", types.ErrInvalidID)
	}
	if inst.Pos.X < 0 || inst.Pos.Y < 0 {
		return fail(fmt.Sprintf("negative position (%d,%d)", inst.Pos.X, inst.Pos.Y), types.ErrOutOfRange)
	}
	if inst.Size.Width < 1 || inst.Size.Height < 1 {
		return fail(fmt.Sprintf("size %dx%d below 1x1", inst.Size.Width, inst.Size.Height), types.ErrOutOfRange)
	}
	d, ok := r.Get(inst.Pane)
	if !ok {
		return fail(fmt.Sprintf("type %q", inst.Pane), types.ErrUnknownPane)
	}
	if err := d.Schema.Validate(normalizeMap(inst.Data)); err != nil {
		return fail("data", err)
	}
	return nil
}

// check applies the registration rules to d.
func check(d Descriptor) error {
	fail := func(key, reason string, args ...any) error {
		return &types.RegistrationError{Identifier: d.Identifier, DataKey: key, Reason: fmt.Sprintf(reason, args...)}
	}
	if !ValidIdentifier(d.Identifier) {
		return &types.RegistrationError{
			Identifier: d.Identifier,
			Reason:     "identifier must have the form namespace:name",
			Err:        types.ErrInvalidIdentifier,
		}
	}
	if d.Size.Width < 1 || d.Size.Height < 1 {
		return fail("", "default size %dx%d below 1x1", d.Size.Width, d.Size.Height)
	}
	if p := d.Resize; p != nil {
		if p.Min != nil && (p.Min.Width < 1 || p.Min.Height < 1) {
			return fail("", "minimum size %dx%d below 1x1", p.Min.Width, p.Min.Height)
		}
		if p.Min != nil && p.Max != nil && (p.Min.Width > p.Max.Width || p.Min.Height > p.Max.Height) {
			return fail("", "minimum size exceeds maximum size")
		}
	}

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if seen[f.DataKey] {
			return fail(f.DataKey, "bound by more than one field")
		}
		seen[f.DataKey] = true
		fs, ok := d.Schema[f.DataKey]
		if !ok {
			return fail(f.DataKey, "not in schema")
		}
		if err := checkField(fs, f); err != nil {
			return fail(f.DataKey, "%v", err)
		}
	}

	if err := d.Schema.Validate(d.Default()); err != nil {
		return fail("", "default data: %v", err)
	}
	return nil
}
