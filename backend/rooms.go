// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ttbt-io/debateverify/config"
)

const (
	// defaultRoomIdleTTL bounds how long a room nobody joined is kept.
	defaultRoomIdleTTL = 2 * time.Minute
	gcInterval         = 30 * time.Second

	localRoomPrefix = "local-"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
)

// IsLocalRoom reports whether id names a room that lives only in one
// browser. Local rooms are never registered.
func IsLocalRoom(id string) bool {
	return strings.HasPrefix(id, localRoomPrefix)
}

// ValidRoomPath reports whether id may appear in a /debate/{id} url.
func ValidRoomPath(id string) bool {
	return IsLocalRoom(id) || config.ValidateRoomID(id) == nil
}

type room struct {
	id      string
	state   json.RawMessage
	created time.Time
	clients map[*wsClient]struct{}
}

// Rooms is the in-memory set of active realtime rooms.
//
// A room is created by the host before navigating to it, lives while at
// least one browser is connected, and is dropped when the last one leaves.
// Rooms that were created but never joined are collected after idleTTL.
type Rooms struct {
	mu      sync.Mutex
	rooms   map[string]*room
	idleTTL time.Duration
	now     func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRooms returns an empty registry. A zero idleTTL selects the default.
func NewRooms(idleTTL time.Duration) *Rooms {
	if idleTTL <= 0 {
		idleTTL = defaultRoomIdleTTL
	}
	return &Rooms{
		rooms:    make(map[string]*room),
		idleTTL:  idleTTL,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Exists reports whether id is registered, and its debate state if the host
// has published one.
func (r *Rooms) Exists(id string) (bool, json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return false, nil
	}
	return true, rm.state
}

// Create registers a room. Local rooms are accepted and ignored.
func (r *Rooms) Create(id string, state json.RawMessage) error {
	if IsLocalRoom(id) {
		return nil
	}
	if err := config.ValidateRoomID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; ok {
		return ErrRoomExists
	}
	if len(state) == 0 || string(state) == "null" {
		state = nil
	}
	r.rooms[id] = &room{
		id:      id,
		state:   state,
		created: r.now(),
		clients: make(map[*wsClient]struct{}),
	}
	log.Printf("Room %s created", id)
	return nil
}

// Delete removes a room and disconnects its clients.
func (r *Rooms) Delete(id string) {
	r.mu.Lock()
	rm, ok := r.rooms[id]
	delete(r.rooms, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	for c := range rm.clients {
		c.close()
	}
	log.Printf("Room %s deleted", id)
}

// List returns the ids of all registered rooms, sorted.
func (r *Rooms) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// join adds c to the room and returns the current state and the clients to
// notify, c included.
func (r *Rooms) join(id string, c *wsClient) (json.RawMessage, []*wsClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	rm.clients[c] = struct{}{}
	return rm.state, clientList(rm), nil
}

// leave removes c and returns the remaining clients. The room is deleted
// when c was the last one.
func (r *Rooms) leave(id string, c *wsClient) []*wsClient {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil
	}
	delete(rm.clients, c)
	if len(rm.clients) == 0 {
		delete(r.rooms, id)
		log.Printf("Room %s closed, last participant left", id)
		return nil
	}
	return clientList(rm)
}

// setState replaces the room's debate state and returns the clients other
// than from that must receive it.
func (r *Rooms) setState(id string, state json.RawMessage, from *wsClient) ([]*wsClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	rm.state = state
	out := make([]*wsClient, 0, len(rm.clients))
	for c := range rm.clients {
		if c != from {
			out = append(out, c)
		}
	}
	return out, nil
}

func clientList(rm *room) []*wsClient {
	out := make([]*wsClient, 0, len(rm.clients))
	for c := range rm.clients {
		out = append(out, c)
	}
	return out
}

// collectIdle drops rooms without participants older than idleTTL and
// returns how many were dropped.
func (r *Rooms) collectIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.idleTTL)
	n := 0
	for id, rm := range r.rooms {
		if len(rm.clients) == 0 && rm.created.Before(cutoff) {
			delete(r.rooms, id)
			n++
		}
	}
	if n > 0 {
		log.Printf("Rooms GC: dropped %d idle room(s)", n)
	}
	return n
}

// StartGC collects idle rooms periodically until Stop is called.
func (r *Rooms) StartGC() {
	go func() {
		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopChan:
				return
			case <-ticker.C:
				r.collectIdle()
			}
		}
	}()
}

// Stop ends garbage collection and disconnects every client.
func (r *Rooms) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
	r.mu.Lock()
	var clients []*wsClient
	for _, rm := range r.rooms {
		clients = append(clients, clientList(rm)...)
	}
	r.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}
