// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package easyrepo

import (
	"fmt"
	"strconv"
	"sync"
)

// Entity is implemented by the pointer of every record kind kept in a repository.
type Entity interface {
	GetID() int
	SetID(id int)
}

// IDPolicy decides the id of the next created item.
type IDPolicy string

const (
	// NextIDMax uses max(existing ids)+1, so ids are never reused while the
	// highest one is still stored.
	NextIDMax IDPolicy = "max"
	// NextIDLength uses len(items)+1. It can repeat an id after a deletion and
	// only exists for parity with older clients.
	NextIDLength IDPolicy = "length"
)

// ParseIDPolicy converts a configuration value into an IDPolicy.
func ParseIDPolicy(v string) (IDPolicy, error) {
	switch IDPolicy(v) {
	case NextIDMax, "":
		return NextIDMax, nil
	case NextIDLength:
		return NextIDLength, nil
	default:
		return "", fmt.Errorf("easyrepo: unknown id policy %q", v)
	}
}

// MemoryRepository keeps an ordered collection of T in memory.
// Writers are serialized and every read returns copies, so callers never
// share state with the repository.
type MemoryRepository[T any, PT interface {
	*T
	Entity
}] struct {
	mu     sync.RWMutex
	items  []T
	policy IDPolicy
}

// NewMemoryRepository creates a repository seeded with the given items, in order.
func NewMemoryRepository[T any, PT interface {
	*T
	Entity
}](policy IDPolicy, seed ...T) *MemoryRepository[T, PT] {
	if policy == "" {
		policy = NextIDMax
	}
	items := make([]T, len(seed))
	copy(items, seed)

	return &MemoryRepository[T, PT]{
		items:  items,
		policy: policy,
	}
}

// List returns every item in insertion order.
func (r *MemoryRepository[T, PT]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of stored items.
func (r *MemoryRepository[T, PT]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// FindByID looks an item up by its textual id. Ids that are not integers never match.
func (r *MemoryRepository[T, PT]) FindByID(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return r.items[idx], true
}

// Create assigns the next id to item, appends it and returns the stored copy.
func (r *MemoryRepository[T, PT]) Create(item T) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	PT(&item).SetID(r.nextID())
	r.items = append(r.items, item)
	return item
}

// Update replaces the stored item matching id, keeping the stored id.
func (r *MemoryRepository[T, PT]) Update(id string, item T) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, false
	}

	PT(&item).SetID(PT(&r.items[idx]).GetID())
	r.items[idx] = item
	return item, true
}

// Delete removes the item matching id and returns it.
func (r *MemoryRepository[T, PT]) Delete(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, false
	}

	removed := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	return removed, true
}

// indexOf must be called with the lock held.
func (r *MemoryRepository[T, PT]) indexOf(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return -1
	}
	for i := range r.items {
		if PT(&r.items[i]).GetID() == n {
			return i
		}
	}
	return -1
}

// nextID must be called with the write lock held.
func (r *MemoryRepository[T, PT]) nextID() int {
	if r.policy == NextIDLength {
		return len(r.items) + 1
	}

	highest := 0
	for i := range r.items {
		if id := PT(&r.items[i]).GetID(); id > highest {
			highest = id
		}
	}
	return highest + 1
}
