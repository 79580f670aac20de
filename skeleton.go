package armature

import (
	"fmt"
	"slices"
)

// Bone is a node of the skeleton tree. Its rest transform is parent-relative
// and is what a pose override is patched onto.
type Bone struct {
	ID     BoneID
	Parent BoneID // zero for the root
	Name   string
	Rest   PartialTransform

	children []BoneID
}

// Children returns a copy of the bone's ordered child list.
func (b *Bone) Children() []BoneID {
	return slices.Clone(b.children)
}

// IsRoot reports whether the bone has no parent.
func (b *Bone) IsRoot() bool { return b.Parent == 0 }

// Skeleton is a tree of bones with exactly one root. Bones are created with
// AddChild and removed with Remove, which deletes the whole sub-tree.
type Skeleton struct {
	bones  map[BoneID]*Bone
	root   BoneID
	nextID BoneID
}

// NewSkeleton creates a skeleton holding a single root bone named "root"
// with an identity rest transform.
func NewSkeleton() *Skeleton {
	s := &Skeleton{bones: make(map[BoneID]*Bone)}
	root := s.newBone(0)
	root.Name = "root"
	s.root = root.ID
	return s
}

func (s *Skeleton) newBone(parent BoneID) *Bone {
	s.nextID++
	b := &Bone{
		ID:     s.nextID,
		Parent: parent,
		Name:   "bone",
		Rest:   IdentityTransform.Partial(),
	}
	s.bones[b.ID] = b
	return b
}

// Root returns the root bone.
func (s *Skeleton) Root() *Bone { return s.bones[s.root] }

// Bone returns the bone with the given id.
func (s *Skeleton) Bone(id BoneID) (*Bone, bool) {
	b, ok := s.bones[id]
	return b, ok
}

// Len returns the number of bones, root included.
func (s *Skeleton) Len() int { return len(s.bones) }

// AddChild creates a new bone under parent and returns it.
func (s *Skeleton) AddChild(parent BoneID) (*Bone, error) {
	p, ok := s.bones[parent]
	if !ok {
		return nil, fmt.Errorf("add child to %d: %w", parent, ErrUnknownBone)
	}
	b := s.newBone(parent)
	p.children = append(p.children, b.ID)
	return b, nil
}

// Remove deletes a bone and all of its descendants, returning the removed
// ids in depth-first order. Removing the root or an unknown bone is a no-op
// that returns nil.
func (s *Skeleton) Remove(id BoneID) []BoneID {
	b, ok := s.bones[id]
	if !ok || id == s.root {
		return nil
	}
	if p, ok := s.bones[b.Parent]; ok {
		p.children = slices.DeleteFunc(p.children, func(c BoneID) bool { return c == id })
	}
	removed := append([]BoneID{id}, s.Descendants(id)...)
	for _, r := range removed {
		delete(s.bones, r)
	}
	return removed
}

// Reparent moves a bone, with its sub-tree, under a new parent. The root
// cannot be moved and a bone cannot move below itself.
func (s *Skeleton) Reparent(id, parent BoneID) error {
	b, ok := s.bones[id]
	if !ok {
		return fmt.Errorf("reparent %d: %w", id, ErrUnknownBone)
	}
	if id == s.root {
		return fmt.Errorf("reparent %d: %w", id, ErrRootBone)
	}
	np, ok := s.bones[parent]
	if !ok {
		return fmt.Errorf("reparent %d under %d: %w", id, parent, ErrUnknownBone)
	}
	if parent == id || s.IsAncestor(id, parent) {
		return fmt.Errorf("reparent %d under its own descendant %d: %w", id, parent, ErrInvalidSkeleton)
	}
	old := s.bones[b.Parent]
	old.children = slices.DeleteFunc(old.children, func(c BoneID) bool { return c == id })
	np.children = append(np.children, id)
	b.Parent = parent
	return nil
}

// Rename sets the display name of a bone.
func (s *Skeleton) Rename(id BoneID, name string) error {
	b, ok := s.bones[id]
	if !ok {
		return fmt.Errorf("rename %d: %w", id, ErrUnknownBone)
	}
	b.Name = name
	return nil
}

// SetRest sets the rest transform of a bone.
func (s *Skeleton) SetRest(id BoneID, rest PartialTransform) error {
	b, ok := s.bones[id]
	if !ok {
		return fmt.Errorf("set rest of %d: %w", id, ErrUnknownBone)
	}
	b.Rest = rest
	return nil
}

// FindByName returns the first bone, in traversal order, with the given name.
func (s *Skeleton) FindByName(name string) (*Bone, bool) {
	var found *Bone
	s.Walk(func(b *Bone, _ int) bool {
		if b.Name == name {
			found = b
			return false
		}
		return true
	})
	return found, found != nil
}

// Descendants returns every bone below id in depth-first, parent-before-child
// order. The bone itself is not included.
func (s *Skeleton) Descendants(id BoneID) []BoneID {
	b, ok := s.bones[id]
	if !ok {
		return nil
	}
	var out []BoneID
	for _, c := range b.children {
		out = append(out, c)
		out = append(out, s.Descendants(c)...)
	}
	return out
}

// IsAncestor reports whether ancestor lies strictly above id.
func (s *Skeleton) IsAncestor(ancestor, id BoneID) bool {
	b, ok := s.bones[id]
	for ok && b.Parent != 0 {
		if b.Parent == ancestor {
			return true
		}
		b, ok = s.bones[b.Parent]
	}
	return false
}

// Chain returns the bones from start down to end, both included. It reports
// false when end is not a strict descendant of start.
func (s *Skeleton) Chain(start, end BoneID) ([]BoneID, bool) {
	if start == end || !s.IsAncestor(start, end) {
		return nil, false
	}
	chain := []BoneID{end}
	for cur := end; cur != start; {
		cur = s.bones[cur].Parent
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain, true
}

// Walk visits every bone parent-before-children starting at the root.
// Returning false from fn stops the walk.
func (s *Skeleton) Walk(fn func(b *Bone, depth int) bool) {
	s.walk(s.root, 0, fn)
}

func (s *Skeleton) walk(id BoneID, depth int, fn func(*Bone, int) bool) bool {
	b, ok := s.bones[id]
	if !ok {
		return true
	}
	if !fn(b, depth) {
		return false
	}
	for _, c := range b.children {
		if !s.walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}

// RestoreSkeleton rebuilds a skeleton from previously persisted bones. Each
// bone's Parent and the order of children must agree; exactly one bone has no
// parent and every bone must be reachable from it.
func RestoreSkeleton(bones []Bone, children map[BoneID][]BoneID) (*Skeleton, error) {
	s := &Skeleton{bones: make(map[BoneID]*Bone, len(bones))}
	for i := range bones {
		b := bones[i]
		if b.ID == 0 {
			return nil, fmt.Errorf("%w: bone id 0 is reserved", ErrInvalidSkeleton)
		}
		if _, dup := s.bones[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate bone id %d", ErrInvalidSkeleton, b.ID)
		}
		b.children = slices.Clone(children[b.ID])
		s.bones[b.ID] = &b
		if b.Parent == 0 {
			if s.root != 0 {
				return nil, fmt.Errorf("%w: bones %d and %d both have no parent", ErrInvalidSkeleton, s.root, b.ID)
			}
			s.root = b.ID
		}
		s.nextID = max(s.nextID, b.ID)
	}
	if s.root == 0 {
		return nil, fmt.Errorf("%w: no root bone", ErrInvalidSkeleton)
	}
	for id, b := range s.bones {
		if b.Parent != 0 {
			p, ok := s.bones[b.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: bone %d has unknown parent %d", ErrInvalidSkeleton, id, b.Parent)
			}
			if !slices.Contains(p.children, id) {
				return nil, fmt.Errorf("%w: bone %d is not listed as a child of %d", ErrInvalidSkeleton, id, b.Parent)
			}
		}
		for _, c := range b.children {
			cb, ok := s.bones[c]
			if !ok || cb.Parent != id {
				return nil, fmt.Errorf("%w: bone %d lists %d as a child", ErrInvalidSkeleton, id, c)
			}
		}
	}
	seen := 0
	s.Walk(func(*Bone, int) bool {
		seen++
		return seen <= len(s.bones)
	})
	if seen != len(s.bones) {
		return nil, fmt.Errorf("%w: %d bones are not reachable from the root", ErrInvalidSkeleton, len(s.bones)-seen)
	}
	return s, nil
}
