package store

import "github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"

// Stats are counts computed from the live inventory.
type Stats struct {
	Total        int            `json:"total"`
	External     int            `json:"external"`
	Local        int            `json:"local"`
	BySourceName map[string]int `json:"bySourceName"`
}

// All returns a copy of the inventory in insertion order.
func (s *Store) All() []screens.Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneScreens(s.screens)
}

// ByOrigin returns external entries when external is true, local entries otherwise.
func (s *Store) ByOrigin(external bool) []screens.Screen {
	return s.filter(func(sc screens.Screen) bool { return sc.Source.External == external })
}

// BySource returns the entries from one source.
func (s *Store) BySource(sourceID string) []screens.Screen {
	return s.filter(func(sc screens.Screen) bool { return sc.Source.ID == sourceID })
}

// Get returns the entry with the given identifier.
func (s *Store) Get(id string) (screens.Screen, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return screens.Screen{}, false
	}
	return s.screens[i], true
}

// Len returns the inventory size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.screens)
}

// Counts returns the external and local inventory sizes.
func (s *Store) Counts() (external, local int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.screens {
		if sc.Source.External {
			external++
		} else {
			local++
		}
	}
	return external, local
}

// Stats computes totals, origin counts and per-source-name counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Total: len(s.screens), BySourceName: make(map[string]int)}
	for _, sc := range s.screens {
		if sc.Source.External {
			st.External++
		} else {
			st.Local++
		}
		st.BySourceName[sourceName(sc)]++
	}
	return st
}

func sourceName(sc screens.Screen) string {
	switch {
	case sc.Source.Name != "":
		return sc.Source.Name
	case sc.Source.ID != "":
		return sc.Source.ID
	default:
		return LocalSourceName
	}
}

func (s *Store) filter(keep func(screens.Screen) bool) []screens.Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]screens.Screen, 0)
	for _, sc := range s.screens {
		if keep(sc) {
			out = append(out, sc)
		}
	}
	return out
}
