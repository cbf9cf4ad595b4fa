// Package wizard implements the field-by-field form navigation state
// machine. It owns no rendering: both the Bubble Tea dialog and the plain
// console renderer drive the same Controller.
package wizard

import (
	"github.com/syntax-syndicate/chatshell/internal/schema"
)

// Phase is the controller's lifecycle state.
type Phase int

const (
	// PhaseAwaitingField means the controller is waiting for input on the
	// field at Cursor().
	PhaseAwaitingField Phase = iota
	// PhaseCompleted is terminal: every field was visited and accepted.
	PhaseCompleted
	// PhaseCancelled is terminal: the user backed out of the first field
	// or cancelled explicitly. Cancellation is a state, never an error.
	PhaseCancelled
)

// String returns a short name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseAwaitingField:
		return "awaiting"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Controller walks a user through one field at a time. It is owned
// exclusively by one active dialog; Submit/Back/Cancel are synchronous
// run-to-completion operations and are never called concurrently.
//
// A controller is single-use: once it reaches PhaseCompleted or
// PhaseCancelled no further transitions are defined, and a new interaction
// requires a new controller.
type Controller struct {
	model *schema.Model
	delim string

	phase    Phase
	cursor   int
	accepted map[string]any
	errors   map[string][]string
	history  []int
	seeds    map[string]any
}

// Option configures a Controller.
type Option func(*Controller)

// WithSeed pre-populates accepted values before the first submit. Seeds do
// not move the cursor: the wizard still starts at field 0 and each seeded
// value can be overridden field by field.
func WithSeed(values map[string]any) Option {
	return func(c *Controller) {
		for k, v := range values {
			if c.model.Field(k) == nil {
				continue // never let accepted hold a key outside the schema
			}
			c.seeds[k] = v
			c.accepted[k] = v
		}
	}
}

// WithArrayDelimiter sets the delimiter used to split raw array input.
func WithArrayDelimiter(delim string) Option {
	return func(c *Controller) {
		if delim != "" {
			c.delim = delim
		}
	}
}

// New creates a controller for one form interaction over the given model.
func New(m *schema.Model, opts ...Option) *Controller {
	c := &Controller{
		model:    m,
		delim:    schema.DefaultArrayDelimiter,
		phase:    PhaseAwaitingField,
		accepted: make(map[string]any),
		errors:   make(map[string][]string),
		seeds:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	if m.Len() == 0 {
		// Degenerate schema: nothing to ask.
		c.phase = PhaseCompleted
	}
	return c
}

// Phase returns the current lifecycle state.
func (c *Controller) Phase() Phase { return c.phase }

// Cursor returns the index of the field currently being edited.
func (c *Controller) Cursor() int { return c.cursor }

// Current returns the field currently being edited, or nil in a terminal
// phase.
func (c *Controller) Current() *schema.FieldSpec {
	if c.phase != PhaseAwaitingField {
		return nil
	}
	return c.model.Fields()[c.cursor]
}

// Errors returns the pending validation errors for the current field, in
// the order they were detected. Empty when the last submit succeeded or
// nothing was submitted yet.
func (c *Controller) Errors() []string {
	f := c.Current()
	if f == nil {
		return nil
	}
	return c.errors[f.Name]
}

// Draft returns the editable candidate text for the current field.
// Resolution order: a previously accepted value (so back navigation never
// loses typed input), then a seed value, then the schema default.
func (c *Controller) Draft() string {
	f := c.Current()
	if f == nil {
		return ""
	}
	if v, ok := c.accepted[f.Name]; ok {
		return schema.FormatValueWith(v, f, c.delim)
	}
	if v, ok := c.seeds[f.Name]; ok {
		return schema.FormatValueWith(v, f, c.delim)
	}
	if f.Default != nil {
		return schema.FormatValueWith(f.Default, f, c.delim)
	}
	return ""
}

// Submit validates raw input for the current field. On failure the cursor
// does not move and Errors reports why. On success the typed value is
// stored and the cursor advances; submitting the last field transitions to
// PhaseCompleted. Calling Submit in a terminal phase is a no-op.
func (c *Controller) Submit(raw string) Phase {
	if c.phase != PhaseAwaitingField {
		return c.phase
	}
	f := c.model.Fields()[c.cursor]

	value, errs := c.model.ValidateWith(f, raw, c.accepted, c.delim)
	if len(errs) > 0 {
		c.errors[f.Name] = errs
		return c.phase
	}
	delete(c.errors, f.Name)

	if value == nil {
		// Empty optional field: fall back to the declared default, or
		// leave the field out of the result entirely.
		if f.Default != nil {
			c.accepted[f.Name] = f.Default
		} else {
			delete(c.accepted, f.Name)
		}
	} else {
		c.accepted[f.Name] = value
	}

	c.history = append(c.history, c.cursor)
	if c.cursor+1 < c.model.Len() {
		c.cursor++
	} else {
		c.phase = PhaseCompleted
	}
	return c.phase
}

// Back returns to the previously visited field, with its accepted value
// recoverable through Draft. Backing out of the first field cancels the
// wizard. Calling Back in a terminal phase is a no-op.
func (c *Controller) Back() Phase {
	if c.phase != PhaseAwaitingField {
		return c.phase
	}
	if len(c.history) == 0 {
		c.phase = PhaseCancelled
		return c.phase
	}
	f := c.model.Fields()[c.cursor]
	delete(c.errors, f.Name)

	c.cursor = c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	return c.phase
}

// Cancel unconditionally moves the wizard to PhaseCancelled.
func (c *Controller) Cancel() Phase {
	if c.phase == PhaseAwaitingField {
		c.phase = PhaseCancelled
	}
	return c.phase
}

// Result returns the accepted values once the wizard has completed. The
// second return is false in any other phase. Iterate the model's Fields to
// read the mapping in field order.
func (c *Controller) Result() (map[string]any, bool) {
	if c.phase != PhaseCompleted {
		return nil, false
	}
	return c.accepted, true
}
