// Package store holds the records decoded from a dump in order of appearance.
package store

import "dominion/internal/rgb"

// Agent is a player with a display color
type Agent struct {
	ID    int
	Color rgb.Color
}

// SpatialObject is a positioned, colored item (a planet in the dump)
type SpatialObject struct {
	ID          int
	Name        string
	OwnerID     int
	SectorID    int
	X           float64
	Y           float64
	Radius      float64
	Color       rgb.Color
	SensorRange float64
}

// Store owns the agent and spatial object collections. Records are only
// appended; nothing is sorted or removed.
type Store struct {
	agents  []Agent
	objects []SpatialObject
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// AddAgent appends an agent
func (s *Store) AddAgent(a Agent) {
	s.agents = append(s.agents, a)
}

// AddObject appends a spatial object
func (s *Store) AddObject(o SpatialObject) {
	s.objects = append(s.objects, o)
}

// Agents returns a copy of the agents in insertion order
func (s *Store) Agents() []Agent {
	out := make([]Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

// Objects returns a copy of the spatial objects in insertion order
func (s *Store) Objects() []SpatialObject {
	out := make([]SpatialObject, len(s.objects))
	copy(out, s.objects)
	return out
}

// EachObject calls fn for every spatial object in insertion order without copying
func (s *Store) EachObject(fn func(SpatialObject)) {
	for _, o := range s.objects {
		fn(o)
	}
}

// AgentCount returns the number of agents
func (s *Store) AgentCount() int { return len(s.agents) }

// ObjectCount returns the number of spatial objects
func (s *Store) ObjectCount() int { return len(s.objects) }

// AgentByID returns the first agent with the given id
func (s *Store) AgentByID(id int) (Agent, bool) {
	for _, a := range s.agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// ObjectsOwnedBy returns the spatial objects whose owner is ownerID, in insertion order
func (s *Store) ObjectsOwnedBy(ownerID int) []SpatialObject {
	var out []SpatialObject
	for _, o := range s.objects {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out
}

// Sectors returns the distinct sector ids in order of first appearance
func (s *Store) Sectors() []int {
	seen := make(map[int]bool)
	var out []int
	for _, o := range s.objects {
		if !seen[o.SectorID] {
			seen[o.SectorID] = true
			out = append(out, o.SectorID)
		}
	}
	return out
}
