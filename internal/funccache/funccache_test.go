package funccache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/aalhour/prbdb/internal/constraint"
)

func TestInsertByIDByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcs.prb")
	c, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer c.Close()

	if err := c.Insert(Entry{ID: 1, Name: "uppercase", Body: []byte("lua")}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	byID, err := c.ByID(1)
	if err != nil || byID.Name != "uppercase" {
		t.Fatalf("ByID(1) = %+v, %v", byID, err)
	}
	byName, err := c.ByName("uppercase")
	if err != nil || byName.ID != 1 {
		t.Fatalf("ByName(uppercase) = %+v, %v", byName, err)
	}
}

func TestInsert_RejectsDuplicateIDOrName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcs.prb")
	c, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer c.Close()

	if err := c.Insert(Entry{ID: 1, Name: "f"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := c.Insert(Entry{ID: 1, Name: "g"}); err != ErrDuplicate {
		t.Fatalf("Insert duplicate id: got %v, want ErrDuplicate", err)
	}
	if err := c.Insert(Entry{ID: 2, Name: "f"}); err != ErrDuplicate {
		t.Fatalf("Insert duplicate name: got %v, want ErrDuplicate", err)
	}
}

func TestDeleteThenNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcs.prb")
	c, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer c.Close()

	if err := c.Insert(Entry{ID: 1, Name: "f"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := c.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.ByID(1); err != ErrNotFound {
		t.Fatalf("ByID after delete: got %v, want ErrNotFound", err)
	}
	if _, err := c.ByName("f"); err != ErrNotFound {
		t.Fatalf("ByName after delete: got %v, want ErrNotFound", err)
	}
}

// refuseAllDeletes is a constraint.Checker that rejects every deletion, so
// tests can confirm Delete actually consults a registered FKey constraint.
type refuseAllDeletes struct{}

func (refuseAllDeletes) CheckDelete(def constraint.FKeyDef, key []byte) error {
	return errors.New("referenced elsewhere")
}

func TestAddConstraint_RejectsMalformedDef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcs.prb")
	c, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer c.Close()

	if err := c.AddConstraint(constraint.Def{Type: constraint.Func}); err == nil {
		t.Fatal("AddConstraint with no name: want error")
	}
}

func TestDelete_BlockedByFKeyConstraint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcs.prb")
	c, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer c.Close()

	if err := c.Insert(Entry{ID: 1, Name: "f"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	def := constraint.Def{
		Name: "referenced_by_space",
		Type: constraint.FKey,
		FKey: constraint.FKeyDef{SpaceID: 7, Field: constraint.FieldRef{ID: 1}},
	}
	if err := c.AddConstraint(def); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	c.SetChecker(refuseAllDeletes{})

	if err := c.Delete(1); err == nil {
		t.Fatal("Delete: want error from the registered FKey constraint")
	}
	if _, err := c.ByID(1); err != nil {
		t.Fatalf("ByID(1) after blocked delete: %v", err)
	}
}

func TestOpen_RebuildsFromJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcs.prb")
	c, err := Create(path, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.Insert(Entry{ID: 1, Name: "keep"}); err != nil {
		t.Fatalf("Insert keep: %v", err)
	}
	if err := c.Insert(Entry{ID: 2, Name: "drop"}); err != nil {
		t.Fatalf("Insert drop: %v", err)
	}
	if err := c.Delete(2); err != nil {
		t.Fatalf("Delete drop: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	if reopened.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reopened.Len())
	}
	if _, err := reopened.ByID(1); err != nil {
		t.Fatalf("ByID(1) after reopen: %v", err)
	}
	if _, err := reopened.ByID(2); err != ErrNotFound {
		t.Fatalf("ByID(2) after reopen: got %v, want ErrNotFound", err)
	}
}
