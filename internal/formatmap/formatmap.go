// Package formatmap is a bounded cache mapping small integer format IDs to
// record layout descriptors: a fixed-size array scanned linearly while the
// working set is small, promoted to a backing hash table once it overflows,
// with round-robin re-promotion of hash hits back into the array so a
// repeatedly-queried hot set stays in the fast path.
//
// Reference: original_source/src/box/tuple_format_map.c
package formatmap

import (
	"fmt"
	"strconv"

	"github.com/aalhour/prbdb/internal/encoding"
)

// cacheSize mirrors TUPLE_FORMAT_MAP_CACHE_SIZE: the number of entries
// scanned linearly before a Map falls back to its hash table.
const cacheSize = 4

// FieldKind describes how a field within a Format should be interpreted
// when decoding a raw record payload, used by Format.Decode and by
// cmd/prbctl's dump command to print field values instead of raw bytes.
type FieldKind uint8

const (
	KindBytes FieldKind = iota
	KindString
	KindUint64
	KindInt64
	KindBool
)

// Field is one named, typed slot within a Format.
type Field struct {
	Name string
	Kind FieldKind
}

// Format describes the layout of records tagged with a given format ID.
type Format struct {
	ID     uint16
	Fields []Field
}

// Decode reads one value per field, in order, from raw's prefix, using
// each field's Kind to determine how many bytes it consumes: KindBytes and
// KindString each consume a length-prefixed slice, KindUint64/KindInt64
// each consume a fixed 8-byte word, and KindBool consumes a single byte.
// It returns a display string for every field, keyed by field name.
func (f *Format) Decode(raw []byte) (map[string]string, error) {
	s := encoding.NewSlice(raw)
	out := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		switch field.Kind {
		case KindBytes:
			v, ok := s.GetLengthPrefixedSlice()
			if !ok {
				return nil, fmt.Errorf("formatmap: truncated field %q", field.Name)
			}
			out[field.Name] = fmt.Sprintf("% X", v)
		case KindString:
			v, ok := s.GetLengthPrefixedSlice()
			if !ok {
				return nil, fmt.Errorf("formatmap: truncated field %q", field.Name)
			}
			out[field.Name] = string(v)
		case KindUint64:
			v, ok := s.GetFixed64()
			if !ok {
				return nil, fmt.Errorf("formatmap: truncated field %q", field.Name)
			}
			out[field.Name] = strconv.FormatUint(v, 10)
		case KindInt64:
			v, ok := s.GetFixed64()
			if !ok {
				return nil, fmt.Errorf("formatmap: truncated field %q", field.Name)
			}
			out[field.Name] = strconv.FormatInt(int64(v), 10)
		case KindBool:
			v, ok := s.GetBytes(1)
			if !ok {
				return nil, fmt.Errorf("formatmap: truncated field %q", field.Name)
			}
			out[field.Name] = strconv.FormatBool(v[0] != 0)
		default:
			return nil, fmt.Errorf("formatmap: unknown field kind %d for %q", field.Kind, field.Name)
		}
	}
	return out, nil
}

type node struct {
	key uint16
	val *Format
}

// Map is the bounded format cache. The zero value is ready to use.
type Map struct {
	cache          [cacheSize]node
	cacheLastIndex int // -1 when empty
	hashTable      map[uint16]*Format
}

// New returns an empty Map.
func New() *Map {
	return &Map{cacheLastIndex: -1}
}

// Add registers format under its ID, overwriting any prior registration
// under the same ID only once it has been evicted from both the array and
// the hash table (Add does not itself deduplicate, mirroring the C
// original: callers are expected to register each ID once).
func (m *Map) Add(format *Format) {
	if m.hashTable == nil {
		if m.cacheLastIndex < cacheSize-1 {
			m.cacheLastIndex++
			m.cache[m.cacheLastIndex] = node{key: format.ID, val: format}
			return
		}
		m.hashTable = make(map[uint16]*Format, cacheSize*2)
		for _, n := range m.cache {
			m.hashTable[n.key] = n.val
		}
	}
	m.hashTable[format.ID] = format
	m.cacheLastIndex = (m.cacheLastIndex + 1) % cacheSize
	m.cache[m.cacheLastIndex] = node{key: format.ID, val: format}
}

// Find looks up a format by ID, checking the fast-path array first. A hit
// that is served from the hash table is promoted into the array, evicting
// whichever slot was least recently promoted.
func (m *Map) Find(id uint16) *Format {
	if m.cacheLastIndex == -1 {
		return nil
	}
	scan := m.cacheLastIndex + 1
	if m.hashTable != nil {
		scan = cacheSize
	}
	for i := 0; i < scan; i++ {
		if m.cache[i].key == id {
			return m.cache[i].val
		}
	}
	if m.hashTable == nil {
		return nil
	}
	val, ok := m.hashTable[id]
	if !ok {
		return nil
	}
	m.cacheLastIndex = (m.cacheLastIndex + 1) % cacheSize
	m.cache[m.cacheLastIndex] = node{key: id, val: val}
	return val
}

// Len returns the number of distinct formats currently registered.
func (m *Map) Len() int {
	if m.cacheLastIndex == -1 {
		return 0
	}
	if m.hashTable == nil {
		return m.cacheLastIndex + 1
	}
	return len(m.hashTable)
}
