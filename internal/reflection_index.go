package internal

import (
	"sort"

	"github.com/lychee-technology/nilability"
)

// ReflectionIndex indexes relationship reflections by owner.
type ReflectionIndex struct {
	byOwner map[string][]nilability.RelationshipReflection
}

// NewReflectionIndex builds an index over the relationships of every definition.
func NewReflectionIndex(defs []*nilability.RecordDefinition) *ReflectionIndex {
	idx := &ReflectionIndex{
		byOwner: make(map[string][]nilability.RelationshipReflection, len(defs)),
	}
	for _, def := range defs {
		if def == nil {
			continue
		}
		idx.byOwner[def.RecordName] = append(idx.byOwner[def.RecordName], def.Relationships...)
	}
	return idx
}

// Reflections returns the relationships declared on owner, in declaration order.
func (idx *ReflectionIndex) Reflections(owner string) []nilability.RelationshipReflection {
	return idx.byOwner[owner]
}

// Reflect returns the relationship named name on owner.
func (idx *ReflectionIndex) Reflect(owner, name string) (nilability.RelationshipReflection, bool) {
	for _, rel := range idx.byOwner[owner] {
		if rel.Name == name {
			return rel, true
		}
	}
	return nilability.RelationshipReflection{}, false
}

// DanglingTargets returns "Owner.relationship -> ClassName" entries whose
// class is not among known, sorted. Polymorphic relationships are skipped.
func (idx *ReflectionIndex) DanglingTargets(known map[string]struct{}) []string {
	var out []string
	for owner, rels := range idx.byOwner {
		for _, rel := range rels {
			if rel.ClassName == "" || rel.Polymorphic {
				continue
			}
			if _, ok := known[rel.ClassName]; !ok {
				out = append(out, owner+"."+rel.Name+" -> "+rel.ClassName)
			}
		}
	}
	sort.Strings(out)
	return out
}
