// Package constraint holds minimal tuple constraint and foreign-key
// definitions. It is deliberately small: spec.md frames this module as one
// "any competent engineer would rewrite trivially", and this mirrors the
// original's scope exactly rather than growing it.
//
// Reference: original_source/src/box/tuple_constraint.h,
// tuple_constraint_def.h, tuple_constraint_fkey.h
package constraint

import "fmt"

// Type distinguishes the two kinds of constraint a Def can carry.
type Type uint8

const (
	// Func constraints check a tuple against a registered function by ID.
	Func Type = iota
	// FKey constraints check a tuple against a foreign key reference.
	FKey
)

// FuncDef identifies the function that checks a Func constraint.
type FuncDef struct {
	ID uint32
}

// FieldRef identifies a field either by ID or by name. An empty Name means
// the field is identified by ID.
type FieldRef struct {
	ID   uint32
	Name string
}

// FKeyDef identifies the space and field a foreign key constraint
// references.
type FKeyDef struct {
	SpaceID uint32
	Field   FieldRef
}

// Def is a single named constraint on a tuple or tuple field.
type Def struct {
	Name string
	Type Type
	Func FuncDef
	FKey FKeyDef
}

// Equal reports whether def and other describe the same constraint. If
// ignoreName is true, the Name field is excluded from the comparison.
func (def Def) Equal(other Def, ignoreName bool) bool {
	if !ignoreName && def.Name != other.Name {
		return false
	}
	if def.Type != other.Type {
		return false
	}
	switch def.Type {
	case Func:
		return def.Func == other.Func
	case FKey:
		return def.FKey == other.FKey
	default:
		return false
	}
}

// Validate reports whether def is well-formed: it must have a name, a
// known type, and (for FKey) a field identified by ID or name (at least
// one of them set; both may be).
func Validate(def Def) error {
	if def.Name == "" {
		return fmt.Errorf("constraint: missing name")
	}
	switch def.Type {
	case Func:
		return nil
	case FKey:
		if def.FKey.Field.Name == "" && def.FKey.Field.ID == 0 {
			return fmt.Errorf("constraint %q: foreign key field must be identified by id or name", def.Name)
		}
		return nil
	default:
		return fmt.Errorf("constraint %q: unknown type %d", def.Name, def.Type)
	}
}

// Checker enforces foreign key constraints on delete. Implementations are
// supplied by the caller; the constraint package itself only carries
// definitions and delegates enforcement.
type Checker interface {
	// CheckDelete reports whether the tuple identified by key may be
	// deleted without violating this foreign key, returning an error
	// describing the violation if not.
	CheckDelete(def FKeyDef, key []byte) error
}
