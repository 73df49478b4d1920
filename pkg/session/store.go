// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/multiagent-studio/studio/pkg/core"
)

// DefaultMaxSessions bounds the number of live web sessions.
const DefaultMaxSessions = 1024

// Slot holds the latest outcome of one visitor.
type Slot struct {
	Outcome   core.Outcome
	RoleName  string
	Task      string
	UpdatedAt time.Time
}

// Store keeps one slot per session. The least recently used session is
// evicted when the bound is reached. Writes overwrite.
type Store struct {
	cache *lru.Cache[string, Slot]
	now   func() time.Time
}

// NewStore creates a store holding at most size sessions.
func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	cache, err := lru.New[string, Slot](size)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	return &Store{cache: cache, now: time.Now}, nil
}

// Open starts a fresh session with an empty slot and returns its id.
func (s *Store) Open() string {
	id := uuid.NewString()
	s.cache.Add(id, Slot{})
	return id
}

// Put overwrites the slot of id. Unknown ids are created.
func (s *Store) Put(id string, slot Slot) {
	if slot.UpdatedAt.IsZero() {
		slot.UpdatedAt = s.now()
	}
	s.cache.Add(id, slot)
}

// Get returns the slot of id.
func (s *Store) Get(id string) (Slot, bool) {
	return s.cache.Get(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.cache.Len() }
