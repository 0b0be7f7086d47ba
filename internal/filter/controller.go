package filter

import (
	"sync"

	"github.com/google/go-cmp/cmp"
)

// Controller tracks the filter dialog: pending values being edited and the
// applied values the listing uses. Edits touch pending only; Apply commits.
type Controller struct {
	mu      sync.Mutex
	schema  Schema
	pending Values
	applied Values
}

// NewController starts both pending and applied at the schema defaults.
func NewController(schema Schema) *Controller {
	return &Controller{
		schema:  schema,
		pending: schema.Defaults(),
		applied: schema.Defaults(),
	}
}

// Schema returns the controller's schema.
func (c *Controller) Schema() Schema { return c.schema }

// Restore sets both pending and applied, typically from persisted state.
func (c *Controller) Restore(v Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v = Normalize(c.schema, v)
	c.pending = v
	c.applied = v.Clone()
}

// Toggle flips value in a multi-select field.
func (c *Controller) Toggle(id, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.pending[id]
	out := make([]string, 0, len(cur)+1)
	found := false
	for _, s := range cur {
		if s == value {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, value)
	}
	c.set(id, out)
}

// Select replaces the selection of a field with value.
func (c *Controller) Select(id, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(id, []string{value})
}

// SetText sets a free-text field.
func (c *Controller) SetText(id, text string) {
	c.Select(id, text)
}

// SetList replaces a multi-select field's selection.
func (c *Controller) SetList(id string, values []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(id, values)
}

// SetRange sets a range field's bounds. 0 means unbounded.
func (c *Controller) SetRange(id string, min, max float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(id, []string{formatNumber(min), formatNumber(max)})
}

func (c *Controller) set(id string, raw []string) {
	f, ok := c.schema.Field(id)
	if !ok {
		return
	}
	c.pending[id] = normalizeField(f, raw)
}

// Pending returns a copy of the values being edited.
func (c *Controller) Pending() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Clone()
}

// Applied returns a copy of the committed values.
func (c *Controller) Applied() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied.Clone()
}

// Apply commits pending values and returns them.
func (c *Controller) Apply() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = c.pending.Clone()
	return c.applied.Clone()
}

// Discard drops uncommitted edits.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = c.applied.Clone()
}

// Reset restores the schema defaults to both pending and applied.
func (c *Controller) Reset() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = c.schema.Defaults()
	c.applied = c.schema.Defaults()
	return c.applied.Clone()
}

// Dirty reports whether pending differs from applied.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !cmp.Equal(c.pending, c.applied)
}
