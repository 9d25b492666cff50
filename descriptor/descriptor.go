// Package descriptor models the human-authored document naming denied
// identities and denied directed edges.
package descriptor

import (
	"encoding/json"
	"fmt"

	"xdao.co/denylist/keys"
)

// Edge is a directed relationship between two identities. (A,B) and (B,A)
// are distinct entries.
type Edge struct {
	Source keys.Identity `json:"source"`
	Target keys.Identity `json:"target"`
}

// Descriptor is the set of denied keys and denied edges. It is read-only
// input to filter construction.
type Descriptor struct {
	DeniedKeys  []keys.Identity `json:"denied_keys"`
	DeniedEdges []Edge          `json:"denied_edges"`
}

// FromJSON decodes and validates a descriptor document. Duplicate keys or
// duplicate edges are rejected.
func FromJSON(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate enforces the no-duplicates invariant and rejects missing
// identities. A JSON edge object lacking one endpoint decodes to a zero
// Identity; letting that through would hash a placeholder key into the
// filter instead of failing the load.
func (d *Descriptor) Validate() error {
	seenKeys := make(map[string]struct{}, len(d.DeniedKeys))
	for i, k := range d.DeniedKeys {
		if k.IsZero() {
			return fmt.Errorf("denied key %d is missing", i)
		}
		s := k.String()
		if _, ok := seenKeys[s]; ok {
			return fmt.Errorf("duplicate denied key %s", k.ShortID())
		}
		seenKeys[s] = struct{}{}
	}
	seenEdges := make(map[string]struct{}, len(d.DeniedEdges))
	for i, e := range d.DeniedEdges {
		if e.Source.IsZero() {
			return fmt.Errorf("denied edge %d is missing its source", i)
		}
		if e.Target.IsZero() {
			return fmt.Errorf("denied edge %d is missing its target", i)
		}
		s := e.Source.String() + "->" + e.Target.String()
		if _, ok := seenEdges[s]; ok {
			return fmt.Errorf("duplicate denied edge %s->%s", e.Source.ShortID(), e.Target.ShortID())
		}
		seenEdges[s] = struct{}{}
	}
	return nil
}

// Len returns the total number of denied entries.
func (d *Descriptor) Len() int {
	return len(d.DeniedKeys) + len(d.DeniedEdges)
}
