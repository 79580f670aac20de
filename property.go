package armature

import (
	"fmt"
	"maps"
	"slices"
)

// Property is a named global scalar read by transition conditions and
// amount expressions. A property with a reset value snaps back to it after
// each evaluated frame, which makes it a one-shot trigger.
type Property struct {
	ID    PropertyID
	Name  string
	Value float64

	reset    float64
	hasReset bool
}

// ResetValue returns the reset value and whether one is set.
func (p *Property) ResetValue() (float64, bool) { return p.reset, p.hasReset }

// SetResetValue makes the property snap back to v after every frame.
func (p *Property) SetResetValue(v float64) {
	p.reset = v
	p.hasReset = true
}

// ClearResetValue stops the property from snapping back.
func (p *Property) ClearResetValue() {
	p.reset = 0
	p.hasReset = false
}

// Properties is the flat namespace of properties owned by a Graph.
type Properties struct {
	byID   map[PropertyID]*Property
	nextID PropertyID
}

// NewProperties creates an empty property set.
func NewProperties() *Properties {
	return &Properties{byID: make(map[PropertyID]*Property)}
}

// Create adds a property with value 0. Names must be unique because
// expressions refer to properties by name.
func (ps *Properties) Create(name string) (*Property, error) {
	if _, dup := ps.Lookup(name); dup {
		return nil, fmt.Errorf("create %q: %w", name, ErrDuplicateProperty)
	}
	ps.nextID++
	p := &Property{ID: ps.nextID, Name: name}
	ps.byID[p.ID] = p
	return p, nil
}

// Insert adds a property with a caller-chosen id, for loaders.
func (ps *Properties) Insert(p *Property) error {
	if p.ID == 0 {
		return fmt.Errorf("insert %q: property id 0 is reserved", p.Name)
	}
	if _, dup := ps.byID[p.ID]; dup {
		return fmt.Errorf("insert %q: id %d already in use", p.Name, p.ID)
	}
	if _, dup := ps.Lookup(p.Name); dup {
		return fmt.Errorf("insert %q: %w", p.Name, ErrDuplicateProperty)
	}
	ps.byID[p.ID] = p
	ps.nextID = max(ps.nextID, p.ID)
	return nil
}

// Rename changes a property's name, keeping names unique.
func (ps *Properties) Rename(id PropertyID, name string) error {
	p, ok := ps.byID[id]
	if !ok {
		return fmt.Errorf("rename %d: %w", id, ErrUnknownProperty)
	}
	if other, dup := ps.Lookup(name); dup && other.ID != id {
		return fmt.Errorf("rename %d to %q: %w", id, name, ErrDuplicateProperty)
	}
	p.Name = name
	return nil
}

// Delete removes a property. Conditions that referenced it never pass
// afterwards.
func (ps *Properties) Delete(id PropertyID) {
	delete(ps.byID, id)
}

// Get returns the property with the given id.
func (ps *Properties) Get(id PropertyID) (*Property, bool) {
	p, ok := ps.byID[id]
	return p, ok
}

// Lookup returns the property with the given name.
func (ps *Properties) Lookup(name string) (*Property, bool) {
	for _, p := range ps.byID {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Value returns the current value of a property.
func (ps *Properties) Value(id PropertyID) (float64, bool) {
	p, ok := ps.byID[id]
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// Set assigns a property's value.
func (ps *Properties) Set(id PropertyID, v float64) error {
	p, ok := ps.byID[id]
	if !ok {
		return fmt.Errorf("set %d: %w", id, ErrUnknownProperty)
	}
	p.Value = v
	return nil
}

// SetByName assigns a property's value by name.
func (ps *Properties) SetByName(name string, v float64) error {
	p, ok := ps.Lookup(name)
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownProperty)
	}
	p.Value = v
	return nil
}

// All returns every property in id order.
func (ps *Properties) All() []*Property {
	out := make([]*Property, 0, len(ps.byID))
	for _, id := range slices.Sorted(maps.Keys(ps.byID)) {
		out = append(out, ps.byID[id])
	}
	return out
}

// Len returns the number of properties.
func (ps *Properties) Len() int { return len(ps.byID) }

// ApplyResets snaps every property that has a reset value back to it.
func (ps *Properties) ApplyResets() {
	for _, p := range ps.byID {
		if p.hasReset {
			p.Value = p.reset
		}
	}
}
