// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"math"
	"reflect"
	"sync"
)

// Errors returned by PickColorTable.
var (
	// ErrNilObject is returned when registering a nil object.
	ErrNilObject = errors.New("render: nil pick object")

	// ErrNotComparable is returned when the object cannot be used as a map key.
	ErrNotComparable = errors.New("render: pick object is not comparable")

	// ErrPickColorsExhausted is returned when every 32-bit color is in use.
	ErrPickColorsExhausted = errors.New("render: pick colors exhausted")
)

// backgroundKey is the reserved key of (0, 0, 0, 0). It is never allocated.
const backgroundKey uint32 = 0

// PickColorTable is a bidirectional mapping between pickable objects and
// unique RGBA colors. Key 0, transparent black, is reserved for the
// background and never maps to an object.
//
// Keys are packed little-endian into the color bytes: red holds the low
// byte and alpha the high byte.
//
// PickColorTable is safe for concurrent use. The pick resolver only reads.
type PickColorTable struct {
	mu       sync.RWMutex
	next     uint32
	byKey    map[uint32]any
	byObject map[any]uint32
}

// NewPickColorTable creates an empty table.
func NewPickColorTable() *PickColorTable {
	return &PickColorTable{
		next:     backgroundKey + 1,
		byKey:    make(map[uint32]any),
		byObject: make(map[any]uint32),
	}
}

// Register assigns a unique color to object. Registering an object twice
// returns the same id.
func (t *PickColorTable) Register(object any) (PickID, error) {
	if object == nil {
		return PickID{}, ErrNilObject
	}
	if !IsComparable(object) {
		return PickID{}, ErrNotComparable
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if key, ok := t.byObject[object]; ok {
		return PickID{table: t, key: key, object: object}, nil
	}
	if t.next == backgroundKey {
		return PickID{}, ErrPickColorsExhausted
	}

	key := t.next
	if key == math.MaxUint32 {
		t.next = backgroundKey
	} else {
		t.next++
	}

	t.byKey[key] = object
	t.byObject[object] = key
	return PickID{table: t, key: key, object: object}, nil
}

// IsComparable reports whether object can be used as a pick object
// without panicking. Interface fields are checked by their dynamic values,
// so a struct holding a slice in an any field is not comparable.
func IsComparable(object any) bool {
	return object != nil && reflect.ValueOf(object).Comparable()
}

// ObjectByPickColor returns the object registered for exactly c.
// The background color and unknown colors report false.
func (t *PickColorTable) ObjectByPickColor(c Color) (any, bool) {
	key := keyFromColor(c)
	if key == backgroundKey {
		return nil, false
	}

	t.mu.RLock()
	object, ok := t.byKey[key]
	t.mu.RUnlock()
	return object, ok
}

// ColorOf returns the color registered for object.
func (t *PickColorTable) ColorOf(object any) (Color, bool) {
	if !IsComparable(object) {
		return Transparent, false
	}

	t.mu.RLock()
	key, ok := t.byObject[object]
	t.mu.RUnlock()
	if !ok {
		return Transparent, false
	}
	return colorFromKey(key), true
}

// Len returns the number of registered objects.
func (t *PickColorTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byKey)
}

func (t *PickColorTable) release(key uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if object, ok := t.byKey[key]; ok {
		delete(t.byKey, key)
		delete(t.byObject, object)
	}
}

// PickID is the handle returned by PickColorTable.Register.
type PickID struct {
	table  *PickColorTable
	key    uint32
	object any
}

// Key returns the 32-bit key encoded in the color.
func (id PickID) Key() uint32 {
	return id.key
}

// Color returns the pick color.
func (id PickID) Color() Color {
	return colorFromKey(id.key)
}

// Object returns the registered object.
func (id PickID) Object() any {
	return id.object
}

// IsZero reports whether id is the zero PickID.
func (id PickID) IsZero() bool {
	return id.table == nil
}

// Destroy releases the color. Afterwards the color no longer resolves.
func (id PickID) Destroy() {
	if id.table != nil {
		id.table.release(id.key)
	}
}

func colorFromKey(key uint32) Color {
	return ColorFromBytes(byte(key), byte(key>>8), byte(key>>16), byte(key>>24))
}

func keyFromColor(c Color) uint32 {
	r, g, b, a := c.Bytes()
	return keyFromBytes(r, g, b, a)
}

func keyFromBytes(r, g, b, a byte) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}
