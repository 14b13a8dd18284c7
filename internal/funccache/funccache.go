// Package funccache is a dual-index registry of named, identified
// definitions — by id and by name — durably logged through a
// journal.Store so the in-memory index can be rebuilt from disk after a
// restart.
//
// Reference: original_source/src/box/func_cache.c
package funccache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aalhour/prbdb/internal/constraint"
	"github.com/aalhour/prbdb/internal/encoding"
	"github.com/aalhour/prbdb/internal/journal"
)

// ErrNotFound is returned by ByID and ByName when no entry matches.
var ErrNotFound = errors.New("funccache: not found")

// ErrDuplicate is returned by Insert when an entry with the same ID or
// the same name is already registered.
var ErrDuplicate = errors.New("funccache: duplicate id or name")

// Entry is a single registered definition. Body is opaque to the
// registry; callers interpret it (e.g. as serialized call metadata).
type Entry struct {
	ID   uint32
	Name string
	Body []byte
}

const (
	recordInsert byte = 0
	recordDelete byte = 1
)

// Cache is a dual-index, journal-backed registry. The zero value is not
// usable; construct one with Open or Create.
type Cache struct {
	mu          sync.RWMutex
	byID        map[uint32]*Entry
	byName      map[string]*Entry
	log         *journal.Store
	constraints []constraint.Def
	checker     constraint.Checker
}

// Create initializes a brand-new, empty cache logged to a fresh segment
// file at path.
func Create(path string, segmentSize int) (*Cache, error) {
	store, err := journal.Create(path, segmentSize, nil)
	if err != nil {
		return nil, err
	}
	return &Cache{
		byID:   make(map[uint32]*Entry),
		byName: make(map[string]*Entry),
		log:    store,
	}, nil
}

// Open rebuilds a cache from the existing segment file at path, replaying
// every insert/delete record in order.
func Open(path string) (*Cache, error) {
	store, err := journal.Open(path, nil)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		byID:   make(map[uint32]*Entry),
		byName: make(map[string]*Entry),
		log:    store,
	}
	it := store.Iterate()
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		if err := c.replay(rec); err != nil {
			store.Close()
			return nil, fmt.Errorf("funccache: %s: %w", path, err)
		}
	}
	return c, nil
}

func (c *Cache) replay(rec []byte) error {
	if len(rec) < 1 {
		return errors.New("funccache: truncated record")
	}
	switch rec[0] {
	case recordInsert:
		e, err := decodeEntry(rec[1:])
		if err != nil {
			return err
		}
		c.byID[e.ID] = e
		c.byName[e.Name] = e
	case recordDelete:
		if len(rec) < 5 {
			return errors.New("funccache: truncated delete record")
		}
		id := encoding.DecodeFixed32(rec[1:])
		c.deleteLocked(id)
	default:
		return fmt.Errorf("funccache: unknown record tag %d", rec[0])
	}
	return nil
}

func encodeEntry(e *Entry) []byte {
	buf := make([]byte, 0, 1+4+4+len(e.Name)+4+len(e.Body))
	buf = append(buf, recordInsert)
	buf = encoding.AppendFixed32(buf, e.ID)
	buf = encoding.AppendLengthPrefixedSlice(buf, []byte(e.Name))
	buf = encoding.AppendLengthPrefixedSlice(buf, e.Body)
	return buf
}

func decodeEntry(data []byte) (*Entry, error) {
	if len(data) < 4 {
		return nil, errors.New("funccache: truncated entry")
	}
	id := encoding.DecodeFixed32(data)
	rest := data[4:]
	name, n, err := encoding.DecodeLengthPrefixedSlice(rest)
	if err != nil {
		return nil, fmt.Errorf("funccache: decode name: %w", err)
	}
	rest = rest[n:]
	body, _, err := encoding.DecodeLengthPrefixedSlice(rest)
	if err != nil {
		return nil, fmt.Errorf("funccache: decode body: %w", err)
	}
	return &Entry{ID: id, Name: string(name), Body: body}, nil
}

// Insert registers a new entry, appending it to the backing journal
// before it becomes visible to ByID/ByName.
func (c *Cache) Insert(e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[e.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := c.byName[e.Name]; ok {
		return ErrDuplicate
	}
	rec := encodeEntry(&e)
	if _, err := c.log.Append(rec); err != nil {
		return fmt.Errorf("funccache: insert %q: %w", e.Name, err)
	}
	stored := e
	c.byID[e.ID] = &stored
	c.byName[e.Name] = &stored
	return nil
}

// AddConstraint registers a well-formedness constraint that future Deletes
// must satisfy. Constraints are schema-level: unlike Insert/Delete, they
// are not themselves durably logged and must be re-registered by the
// caller after Open.
func (c *Cache) AddConstraint(def constraint.Def) error {
	if err := constraint.Validate(def); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constraints = append(c.constraints, def)
	return nil
}

// SetChecker installs the Checker used to enforce any FKey constraints
// registered via AddConstraint. With no checker installed, FKey
// constraints are recorded but not enforced.
func (c *Cache) SetChecker(checker constraint.Checker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checker = checker
}

// Delete removes the entry registered under fid, if any, after confirming
// the deletion does not violate any registered FKey constraint.
func (c *Cache) Delete(fid uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[fid]; !ok {
		return nil
	}
	key := encoding.AppendFixed32(nil, fid)
	if c.checker != nil {
		for _, def := range c.constraints {
			if def.Type != constraint.FKey {
				continue
			}
			if err := c.checker.CheckDelete(def.FKey, key); err != nil {
				return fmt.Errorf("funccache: delete %d: %w", fid, err)
			}
		}
	}
	rec := append([]byte{recordDelete}, key...)
	if _, err := c.log.Append(rec); err != nil {
		return fmt.Errorf("funccache: delete %d: %w", fid, err)
	}
	c.deleteLocked(fid)
	return nil
}

func (c *Cache) deleteLocked(fid uint32) {
	e, ok := c.byID[fid]
	if !ok {
		return
	}
	delete(c.byID, fid)
	delete(c.byName, e.Name)
}

// ByID returns the entry registered under fid.
func (c *Cache) ByID(fid uint32) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[fid]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// ByName returns the entry registered under name.
func (c *Cache) ByName(name string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Len returns the number of registered entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// Close closes the backing journal segment.
func (c *Cache) Close() error {
	return c.log.Close()
}
