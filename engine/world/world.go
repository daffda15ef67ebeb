// Package world is the in-memory store of locations, entities, and player
// inventories that the resolver scopes against and the executor mutates.
// A single RWMutex guards the maps: content loading writes once up front,
// sessions read concurrently, executor mutations take the write lock.
package world

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/nathoo/parley/types"
)

var (
	// ErrNotPresent means the entity is not at the expected location.
	ErrNotPresent = errors.New("not present")
	// ErrNotCarried means the player does not hold the entity.
	ErrNotCarried = errors.New("not carried")
	// ErrNotPortable means the entity cannot be picked up.
	ErrNotPortable = errors.New("not portable")
	// ErrAlreadyCarried means the player already holds the entity.
	ErrAlreadyCarried = errors.New("already carried")
	// ErrNoExit means the location has no exit in the given direction.
	ErrNoExit = errors.New("no exit")
)

// Entity is the runtime form of a registered entity template.
type Entity struct {
	ID          string
	Name        string
	Aliases     []string
	Adjectives  []string
	Category    string
	Tier        string
	Description string
	Location    string // empty while carried
	InCombat    bool
}

// Portable reports whether the entity can be carried.
func (e Entity) Portable() bool {
	return e.Category == "item"
}

// Store holds the shared world state.
type Store struct {
	mu          sync.RWMutex
	meta        types.WorldDef
	locations   map[string]types.LocationDef
	entities    map[string]Entity
	inventories map[string][]string // player ID → carried entity IDs
}

// NewStore creates an empty world store.
func NewStore() *Store {
	return &Store{
		locations:   map[string]types.LocationDef{},
		entities:    map[string]Entity{},
		inventories: map[string][]string{},
	}
}

// SetMeta records the world metadata.
func (s *Store) SetMeta(def types.WorldDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = def
}

// Meta returns the world metadata.
func (s *Store) Meta() types.WorldDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

// AddLocation registers a location definition.
func (s *Store) AddLocation(def types.LocationDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[def.ID] = def
}

// Location returns a location definition by ID.
func (s *Store) Location(id string) (types.LocationDef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[id]
	return loc, ok
}

// Spawn places entities from templates into the world.
func (s *Store) Spawn(templates []types.EntityTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range templates {
		s.entities[t.ID] = Entity{
			ID:          t.ID,
			Name:        t.Name,
			Aliases:     append([]string(nil), t.Aliases...),
			Adjectives:  append([]string(nil), t.Adjectives...),
			Category:    t.Category,
			Tier:        t.Tier,
			Description: t.Description,
			Location:    t.Location,
		}
	}
}

// Entity returns a copy of an entity by ID.
func (s *Store) Entity(id string) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// EntityName returns the display name of an entity. Implements the phrase
// package's NameSource.
func (s *Store) EntityName(id string) (string, bool) {
	e, ok := s.Entity(id)
	if !ok {
		return "", false
	}
	return e.Name, true
}

// EntitiesAt returns the entities at a location, ordered by ID for
// deterministic candidate lists.
func (s *Store) EntitiesAt(locationID string) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Entity
	for _, e := range s.entities {
		if e.Location == locationID && locationID != "" {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Inventory returns the entities carried by a player, in carry order.
func (s *Store) Inventory(playerID string) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Entity
	for _, id := range s.inventories[playerID] {
		if e, ok := s.entities[id]; ok {
			result = append(result, e)
		}
	}
	return result
}

// Carrying reports whether the player holds the entity.
func (s *Store) Carrying(playerID, entityID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carrying(playerID, entityID)
}

func (s *Store) carrying(playerID, entityID string) bool {
	for _, id := range s.inventories[playerID] {
		if id == entityID {
			return true
		}
	}
	return false
}

// Take moves an entity from the player's location into their inventory.
func (s *Store) Take(playerID, locationID, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[entityID]
	if !ok || e.Location != locationID {
		if s.carrying(playerID, entityID) {
			return ErrAlreadyCarried
		}
		return ErrNotPresent
	}
	if !e.Portable() {
		return ErrNotPortable
	}
	e.Location = ""
	s.entities[entityID] = e
	s.inventories[playerID] = append(s.inventories[playerID], entityID)
	return nil
}

// Drop moves a carried entity out of the inventory into the location.
func (s *Store) Drop(playerID, locationID, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.inventories[playerID]
	for i, id := range inv {
		if id != entityID {
			continue
		}
		s.inventories[playerID] = append(inv[:i], inv[i+1:]...)
		if e, ok := s.entities[entityID]; ok {
			e.Location = locationID
			s.entities[entityID] = e
		}
		return nil
	}
	return ErrNotCarried
}

// Remove deletes a carried entity from the world (eaten, drunk, spent).
func (s *Store) Remove(playerID, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.inventories[playerID]
	for i, id := range inv {
		if id != entityID {
			continue
		}
		s.inventories[playerID] = append(inv[:i], inv[i+1:]...)
		delete(s.entities, entityID)
		return nil
	}
	return ErrNotCarried
}

// MoveEntity relocates an entity.
func (s *Store) MoveEntity(entityID, locationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[entityID]; ok {
		e.Location = locationID
		s.entities[entityID] = e
	}
}

// SetCombat flags an entity as engaged in combat.
func (s *Store) SetCombat(entityID string, engaged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[entityID]; ok {
		e.InCombat = engaged
		s.entities[entityID] = e
	}
}

// Move resolves an exit from a location. Returns the destination ID.
func (s *Store) Move(locationID, direction string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[locationID]
	if !ok {
		return "", ErrNoExit
	}
	dest, ok := loc.Exits[strings.ToLower(direction)]
	if !ok {
		return "", ErrNoExit
	}
	return dest, nil
}

// Exits returns a copy of a location's exits.
func (s *Store) Exits(locationID string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[locationID]
	if !ok {
		return nil
	}
	exits := make(map[string]string, len(loc.Exits))
	for dir, dest := range loc.Exits {
		exits[dir] = dest
	}
	return exits
}
