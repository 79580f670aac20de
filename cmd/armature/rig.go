package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phanxgames/armature/project"
)

// loadRig loads path and applies name=value property overrides.
func loadRig(path string, sets []string) (*project.Rig, error) {
	r, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applySets(r, sets); err != nil {
		return nil, err
	}
	return r, nil
}

func applySets(r *project.Rig, sets []string) error {
	props := r.Graph.Properties()
	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("--set %q: want name=value", s)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("--set %q: %w", s, err)
		}
		if err := props.SetByName(strings.TrimSpace(name), v); err != nil {
			return fmt.Errorf("--set %q: %w", s, err)
		}
	}
	return nil
}
